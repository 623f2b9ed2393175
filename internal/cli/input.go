package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/typewriter/internal/config"
)

// loadInput resolves the strings and settings for play and simulate.
//
// With a config path the file is loaded and --string values, if any,
// replace its strings. Without one the strings come from --string alone
// and every setting takes its default.
func loadInput(path string, strs []string) (*config.File, error) {
	file := &config.File{}
	if path != "" {
		f, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		file = f
	}

	if len(strs) > 0 {
		file.Strings = append([]string(nil), strs...)
	}

	if err := file.Validate(); err != nil {
		return nil, &config.LoadError{Code: config.ErrCodeInvalid, Path: path, Message: err.Error(), Err: err}
	}
	return file, nil
}

// inputError converts a loadInput error into an ExitError after reporting
// it through the formatter.
func inputError(formatter *OutputFormatter, err error) error {
	code := config.ErrCodeGeneric
	var le *config.LoadError
	if errors.As(err, &le) {
		code = le.Code
	}
	if outErr := formatter.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, fmt.Sprintf("input error [%s]", code), err)
}
