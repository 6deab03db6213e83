package playground

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
	"github.gatech.edu/ECEInnovation/rv32ias/util"
)

// Request is a message sent by the browser.
type Request struct {
	Type   string                     `json:"type"` // "assemble" or "disassemble"
	Source string                     `json:"source,omitempty"`
	Config *assembler.AssemblerConfig `json:"config,omitempty"`
	Words  []string                   `json:"words,omitempty"` // hex
}

type ListingRow struct {
	Address  uint32 `json:"address"`
	Labels   string `json:"labels"`
	Hex      string `json:"hex"`
	Bin      string `json:"bin"`
	Assembly string `json:"assembly"`
}

type AssembleResponse struct {
	Type     string                 `json:"type"` // "result"
	Words    []string               `json:"words"`
	Listing  []ListingRow           `json:"listing"`
	Warnings []assembler.Diagnostic `json:"warnings"`
}

type DisassembleResponse struct {
	Type  string   `json:"type"` // "disassembly"
	Lines []string `json:"lines"`
}

type ErrorResponse struct {
	Type       string                `json:"type"` // "error"
	Kind       string                `json:"kind,omitempty"`
	Line       int                   `json:"line,omitempty"`
	Note       string                `json:"note,omitempty"`
	Context    string                `json:"context,omitempty"`
	Message    string                `json:"message"`
	Diagnostic *assembler.Diagnostic `json:"diagnostic,omitempty"`
}

func errorResponse(err error) ErrorResponse {
	var asmErr *assembler.AsmError
	if !errors.As(err, &asmErr) {
		return ErrorResponse{Type: "error", Message: err.Error()}
	}
	diag := asmErr.Diagnostic()
	return ErrorResponse{
		Type:       "error",
		Kind:       asmErr.Kind.String(),
		Line:       asmErr.Line,
		Note:       asmErr.Note,
		Context:    asmErr.Context,
		Message:    asmErr.Message(),
		Diagnostic: &diag,
	}
}

func assemble(req Request) interface{} {
	config := assembler.GetConfig()
	if req.Config != nil {
		config = *req.Config
	}

	res, err := assembler.AssembleWithConfig(req.Source, config)
	if err != nil {
		return errorResponse(err)
	}

	resp := AssembleResponse{
		Type:     "result",
		Words:    make([]string, len(res.ProgramText)),
		Listing:  make([]ListingRow, 0, len(res.ProgramText)),
		Warnings: res.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = make([]assembler.Diagnostic, 0)
	}
	for i, word := range res.ProgramText {
		resp.Words[i] = fmt.Sprintf("%08X", word)
	}
	for _, row := range res.Listing() {
		resp.Listing = append(resp.Listing, ListingRow{
			Address:  row.Address,
			Labels:   row.Labels,
			Hex:      fmt.Sprintf("%08X", row.Word),
			Bin:      fmt.Sprintf("%032b", row.Word),
			Assembly: row.Assembly,
		})
	}
	return resp
}

func disassemble(req Request) interface{} {
	words := make([]uint32, len(req.Words))
	for i, w := range req.Words {
		v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(w, "0x"), "0X"), 16, 32)
		if err != nil {
			return ErrorResponse{Type: "error", Message: fmt.Sprintf("invalid word %q", w)}
		}
		words[i] = uint32(v)
	}
	return DisassembleResponse{Type: "disassembly", Lines: assembler.Disassemble(words)}
}

// Respond computes the reply to one request.
func Respond(req Request) interface{} {
	switch req.Type {
	case "assemble":
		return assemble(req)
	case "disassemble":
		return disassemble(req)
	}
	return ErrorResponse{Type: "error", Message: "unknown message type: " + req.Type}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("read:", err)
			}
			return
		}

		var reply interface{}
		req := Request{}
		if err := json.Unmarshal(messageBytes, &req); err != nil {
			reply = ErrorResponse{Type: "error", Message: "invalid message: " + err.Error()}
		} else {
			util.LogF("playground: %s request", req.Type)
			reply = Respond(req)
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.Println("write:", err)
			return
		}
	}
}

func handleGetPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(htmlPage))
}

// NewHandler serves the page on / and the assembler socket on /ws.
func NewHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handleSocket)
	mux.HandleFunc("/", handleGetPage)
	return mux
}

func ListenAndServe(addr string) error {
	log.Printf("Connect to the assembler playground at http://%s", displayAddr(addr))
	return http.ListenAndServe(addr, NewHandler())
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
