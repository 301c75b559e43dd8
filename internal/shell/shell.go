package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"github.com/tuannm99/flatsql/internal/sql/executor"
)

const continuationPrompt = "...> "

// Executor runs one statement.
type Executor interface {
	ExecSQL(sql string) (*executor.Result, error)
}

// LineReader is the input side of the shell. *readline.Instance satisfies
// it, as do the optional historySaver and promptSetter.
type LineReader interface {
	Readline() (string, error)
}

type historySaver interface {
	SaveHistory(content string) error
}

type promptSetter interface {
	SetPrompt(prompt string)
}

// Shell is the read-eval-print loop. There is no quit statement: the loop
// only ends when the reader reports io.EOF.
type Shell struct {
	in     LineReader
	exec   Executor
	out    io.Writer
	prompt string
	logger *zap.Logger
}

func New(in LineReader, exec Executor, out io.Writer, prompt string, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{in: in, exec: exec, out: out, prompt: prompt, logger: logger}
}

// Run reads statements until EOF. A statement whose parentheses are still
// open continues on the next line; Ctrl+C drops the pending statement. A
// statement still pending at EOF is executed as is.
func (s *Shell) Run() error {
	var buf strings.Builder

	for {
		line, err := s.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			s.setPrompt(s.prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			if stmt := strings.TrimSpace(buf.String()); stmt != "" {
				_ = s.Exec(stmt)
			}
			return nil
		}
		if err != nil {
			return err
		}

		if buf.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)

		if openParens(buf.String()) > 0 {
			s.setPrompt(continuationPrompt)
			continue
		}

		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		s.setPrompt(s.prompt)

		_ = s.Exec(stmt)
	}
}

// Exec runs one statement and prints its result or error. The error is
// returned for callers that need an exit status.
func (s *Shell) Exec(stmt string) error {
	s.saveHistory(stmt)

	res, err := s.exec.ExecSQL(stmt)
	if err != nil {
		s.logger.Debug("statement failed", zap.String("sql", stmt), zap.Error(err))
		fmt.Fprintf(s.out, "error: %v\n", err)
		return err
	}
	RenderResult(s.out, res)
	return nil
}

func (s *Shell) setPrompt(p string) {
	if ps, ok := s.in.(promptSetter); ok {
		ps.SetPrompt(p)
	}
}

func (s *Shell) saveHistory(stmt string) {
	hs, ok := s.in.(historySaver)
	if !ok {
		return
	}
	if err := hs.SaveHistory(compactOneLine(stmt)); err != nil {
		s.logger.Warn("save history", zap.Error(err))
	}
}

// openParens counts unclosed '('. A quote only opens a quoted span at the
// start of a token, so an apostrophe inside a bare value such as O'Brien
// does not hide the parentheses after it.
func openParens(buf string) int {
	var (
		depth int
		quote rune
	)
	prev := ' '
	for _, r := range buf {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case (r == '\'' || r == '"') && tokenBoundary(prev):
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
		}
		prev = r
	}
	return depth
}

func tokenBoundary(r rune) bool {
	return strings.ContainsRune(" \t\r\n,()=!<>", r)
}

func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
