//go:build !windows

package player

import (
	"os"
	"syscall"

	"github.com/pkg/errors"

	"wfmu/internal/errutil"
)

// suspend stops or resumes p with SIGSTOP/SIGCONT.
func suspend(p *os.Process, stop bool) error {
	sig := syscall.SIGCONT
	if stop {
		sig = syscall.SIGSTOP
	}
	if err := p.Signal(sig); err != nil {
		return errors.Wrapf(errutil.ErrPlayer, "signal %v: %v", sig, err)
	}
	return nil
}
