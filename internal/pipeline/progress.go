package pipeline

import (
	"path/filepath"

	"github.com/luxdlx/buildtools/internal/fetch"
	"github.com/luxdlx/buildtools/internal/ui"
)

// ReportProgress forwards download progress to u.
func ReportProgress(u ui.UserInterface) fetch.ProgressFunc {
	return func(p fetch.Progress) {
		total := p.BytesTotal
		if p.Done && total == 0 {
			total = p.BytesDone
		}
		u.WriteProgress(filepath.Base(p.Dest), p.BytesDone, total)
	}
}
