//go:build windows

package player

import (
	"os"

	"github.com/pkg/errors"

	"wfmu/internal/errutil"
)

func suspend(_ *os.Process, _ bool) error {
	return errors.Wrap(errutil.ErrPlayer, "pause is not supported for ffplay on windows")
}
