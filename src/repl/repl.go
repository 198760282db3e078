package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"chunkdb/src/directors"

	"go.uber.org/zap"
)

// Repl is the interactive console. It reads commands line by line and
// runs each to completion before prompting for the next.
type Repl struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger *zap.SugaredLogger
}

func NewRepl(in io.Reader, out, errOut io.Writer, logger *zap.SugaredLogger) *Repl {
	return &Repl{
		in:     in,
		out:    out,
		errOut: errOut,
		logger: logger,
	}
}

// Run loops until EOF or the literal input "exit". Command failures are
// printed and the loop continues.
func (r *Repl) Run(serviceManager *directors.ServiceManager) error {
	dbName := serviceManager.DatabaseService.DatabaseName()
	fmt.Fprintf(r.out, "Database ready: %s\n", dbName)
	fmt.Fprintf(r.out, "Enter commands (e.g. %s.users.find({})). Type 'exit' to quit.\n", dbName)

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" {
			break
		}

		response, err := directors.CommandDirector(serviceManager, line, r.logger)
		if err != nil {
			fmt.Fprintf(r.errOut, "Error: %v\n", err)
			continue
		}

		rendered, err := response.Render()
		if err != nil {
			fmt.Fprintf(r.errOut, "Error rendering response: %v\n", err)
			continue
		}
		fmt.Fprintln(r.out, rendered)
	}

	return scanner.Err()
}
