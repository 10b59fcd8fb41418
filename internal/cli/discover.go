package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/matzehuels/netvis/pkg/errors"
)

// stdinArg reads the save from standard input.
const stdinArg = "-"

// NoSaveError is returned when none of the probed paths holds a save.
type NoSaveError struct {
	Tried []string
}

func (e *NoSaveError) Error() string {
	return fmt.Sprintf("no save file found (tried %s)", strings.Join(e.Tried, ", "))
}

// Code implements apperrors.Coder.
func (e *NoSaveError) Code() apperrors.Code { return apperrors.ErrCodeNoSaveFile }

// discoverSave returns the first existing regular file among arg and the
// candidates. A missing arg is not fatal: the candidates are still probed.
func discoverSave(arg string, candidates []string) (string, error) {
	tried := make([]string, 0, len(candidates)+1)
	if arg != "" {
		tried = append(tried, arg)
	}
	tried = append(tried, candidates...)

	for _, p := range tried {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", &NoSaveError{Tried: tried}
}

// readSave returns the save bytes and the path they came from. The path is
// "-" for standard input.
func (c *CLI) readSave(arg string, stdin io.Reader) ([]byte, string, error) {
	if arg == stdinArg {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, stdinArg, nil
	}

	path, err := discoverSave(arg, c.Config.Discovery.Candidates)
	if err != nil {
		return nil, "", err
	}
	if arg != "" && path != arg {
		c.Logger.Warn("save not found, using fallback", "requested", arg, "using", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "read %s", path)
	}
	c.Logger.Debug("read save", "path", path, "bytes", len(data))
	return data, path, nil
}

// printNoSave lists the probed paths when discovery fails.
func printNoSave(err error) {
	var nse *NoSaveError
	if !errors.As(err, &nse) {
		return
	}
	printError("No save file found. Tried:")
	for _, p := range nse.Tried {
		printDetail("%s", p)
	}
}
