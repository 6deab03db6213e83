package playground_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
	"github.gatech.edu/ECEInnovation/rv32ias/playground"
)

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(playground.NewHandler())
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("Expected to connect, got %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestAssembleOverSocket(t *testing.T) {
	conn := dial(t)

	err := conn.WriteJSON(playground.Request{Type: "assemble", Source: "start:\n  addi x1, x0, 5\n  beq x1, x0, start"})
	if err != nil {
		t.Fatal(err)
	}

	resp := playground.AssembleResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("Expected a response, got %v", err)
	}
	if resp.Type != "result" {
		t.Fatalf("Expected result, got %s", resp.Type)
	}
	if len(resp.Words) != 2 || resp.Words[0] != "00500093" || resp.Words[1] != "FE008EE3" {
		t.Errorf("Unexpected words %v", resp.Words)
	}
	if resp.Listing[0].Labels != "start" || resp.Listing[1].Bin != "11111110000000001000111011100011" {
		t.Errorf("Unexpected listing %+v", resp.Listing)
	}
}

func TestAssembleErrorOverSocket(t *testing.T) {
	conn := dial(t)

	err := conn.WriteJSON(playground.Request{Type: "assemble", Source: "addx x1, x2, x3"})
	if err != nil {
		t.Fatal(err)
	}

	resp := playground.ErrorResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("Expected a response, got %v", err)
	}
	if resp.Type != "error" || resp.Kind != "Invalid Instruction" || resp.Line != 1 {
		t.Errorf("Unexpected response %+v", resp)
	}
	if !strings.Contains(resp.Context, "err! 1 | addx x1, x2, x3") {
		t.Errorf("Unexpected context %q", resp.Context)
	}
}

func TestStrictConfigOverSocket(t *testing.T) {
	conn := dial(t)

	err := conn.WriteJSON(playground.Request{
		Type:   "assemble",
		Source: "addi x1, x0, 5000",
		Config: &assembler.AssemblerConfig{StrictImmediates: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	resp := playground.ErrorResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("Expected a response, got %v", err)
	}
	if resp.Note != assembler.NoteImmediateOutOfRange {
		t.Errorf("Expected out of range note, got %+v", resp)
	}
}

func TestDisassembleOverSocket(t *testing.T) {
	conn := dial(t)

	if err := conn.WriteJSON(playground.Request{Type: "disassemble", Words: []string{"003100B3", "0x00008067"}}); err != nil {
		t.Fatal(err)
	}

	resp := playground.DisassembleResponse{}
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("Expected a response, got %v", err)
	}
	if len(resp.Lines) != 2 || resp.Lines[0] != "add ra, sp, gp" || resp.Lines[1] != "jalr zero, 0(ra)" {
		t.Errorf("Unexpected lines %v", resp.Lines)
	}
}

func TestUnknownMessage(t *testing.T) {
	resp, ok := playground.Respond(playground.Request{Type: "run"}).(playground.ErrorResponse)
	if !ok || !strings.Contains(resp.Message, "run") {
		t.Errorf("Unexpected response %+v", resp)
	}
}

func TestPage(t *testing.T) {
	server := httptest.NewServer(playground.NewHandler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "RV32I Assembler") {
		t.Errorf("Expected page title in body")
	}

	missing, err := http.Get(server.URL + "/nothing")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", missing.StatusCode)
	}
}
