package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"newsdesk/internal/utils"
)

// Export writes a zip archive of the whole mirror tree to w. Entries are
// paths relative to the mirror root, e.g. posts/42/meta.json. An empty or
// missing root produces an empty archive.
func (s *FileSynchronizer) Export(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := os.Stat(s.root); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("export mirror: %w", err)
		}
		if err := os.MkdirAll(s.root, 0o755); err != nil {
			return fmt.Errorf("export mirror: %w", err)
		}
	}

	if err := utils.WriteZipFromDirectory(w, s.root); err != nil {
		return fmt.Errorf("export mirror: %w", err)
	}

	return nil
}
