package languageServer

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"github.gatech.edu/ECEInnovation/rv32ias/util"
)

const serverName = "rv32ias Language Server"

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// ServeConn speaks LSP over rwc until the peer disconnects. Every connection has its own documents.
func ServeConn(ctx context.Context, rwc io.ReadWriteCloser) *jsonrpc2.Conn {
	h := handler{documents: newDocumentStore()}
	return jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), h)
}

// ListenAndServe serves a single client over stdin and stdout.
func ListenAndServe() {
	<-ServeConn(context.Background(), stdrwc{}).DisconnectNotify()
}

// ListenAndServeTCP accepts clients on addr until the listener fails.
func ListenAndServeTCP(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer lis.Close()

	log.Printf("%s: listening for TCP connections on %s", serverName, lis.Addr())
	return Serve(context.Background(), lis)
}

func Serve(ctx context.Context, lis net.Listener) error {
	connectionCount := 0

	for {
		conn, err := lis.Accept()
		if err != nil {
			return err
		}
		connectionCount = connectionCount + 1
		connectionID := connectionCount
		log.Printf("%s: received incoming connection #%d", serverName, connectionID)

		jsonrpc2Connection := ServeConn(ctx, conn)
		go func() {
			<-jsonrpc2Connection.DisconnectNotify()
			log.Printf("%s: connection #%d closed", serverName, connectionID)
		}()
	}
}

type handler struct {
	documents *documentStore
}

func (h handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	util.LogF("%s: received request: %s", serverName, req.Method)
	switch req.Method {
	case "initialize":
		handleInitialize(ctx, conn, req)
	case "initialized":
		registerRemainingCapabilities(ctx, conn)
	case "textDocument/didOpen":
		h.documentOpenNotification(ctx, conn, req)
	case "textDocument/didClose":
		h.documentCloseNotification(ctx, conn, req)
	case "textDocument/didChange":
		h.documentChangeNotification(ctx, conn, req)
	case "textDocument/diagnostic":
		h.documentDiagnostics(ctx, conn, req)
	case "textDocument/willSaveWaitUntil":
		h.documentWillSaveWaitUntil(ctx, conn, req)
	case "textDocument/formatting":
		h.documentFormatting(ctx, conn, req)
	case "textDocument/hover":
		h.hoverRequest(ctx, conn, req)

	// quitting
	case "shutdown":
		conn.Reply(ctx, req.ID, nil)
	case "exit":
		conn.Close()

	default:
		if !req.Notif {
			conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
				Code:    jsonrpc2.CodeMethodNotFound,
				Message: "method not supported: " + req.Method,
			})
		}
	}
}

// decodeParams unmarshals the request parameters, replying with an error to requests that carry bad ones.
func decodeParams(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, v interface{}) bool {
	if req.Params != nil && string(*req.Params) != "null" && json.Unmarshal(*req.Params, v) == nil {
		return true
	}
	if !req.Notif {
		conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeInvalidParams,
			Message: "invalid parameters",
		})
	}
	return false
}

func handleInitialize(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := InitializeParams{}
	if !decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	result := InitializeResult{}
	result.Capabilities.TextDocumentSync = 1
	result.Capabilities.HoverProvider = true
	result.Capabilities.DocumentFormattingProvider = true
	result.ServerInfo.Name = serverName
	conn.Reply(ctx, req.ID, result)
}

func registerRemainingCapabilities(ctx context.Context, conn *jsonrpc2.Conn) {
	util.LogF("%s: registering remaining capabilities", serverName)
	params := RegistrationParams{
		Registrations: []Registration{
			{
				ID:     "textDocumentSync.willSaveWaitUntil",
				Method: "textDocument/willSaveWaitUntil",
				RegisterOptions: TextDocumentRegistrationOptions{
					DocumentSelector: []DocumentFilter{
						{
							Scheme:   "file",
							Language: "riscv",
						},
					},
				},
			},
		},
	}

	go conn.Call(context.Background(), "client/registerCapability", params, nil)
}
