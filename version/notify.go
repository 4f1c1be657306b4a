package version

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/anisan-cli/anifeed/color"
	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/icon"
	"github.com/anisan-cli/anifeed/key"
	"github.com/anisan-cli/anifeed/style"
	"github.com/anisan-cli/anifeed/transport"
	"github.com/anisan-cli/anifeed/util"
	"github.com/spf13/viper"
)

// Notify prints a notice to w when a newer release than the running one exists.
// Failures are silent.
func Notify(ctx context.Context, w io.Writer, t transport.Transport) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if a new version is available...", icon.Get(icon.Progress)))
	latest, err := Latest(ctx, t, ReleasesURL).Await(ctx)
	erase()

	if err != nil {
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	_, _ = fmt.Fprintf(w, `
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/anisan-cli/anifeed/releases/tag/v"+latest),
	)
}
