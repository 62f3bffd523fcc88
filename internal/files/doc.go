// Package files provides file discovery and output writing.
//
// Discovery lists the per-player game logs (and any other CSV set) in a
// stable, name-sorted order. Manager writes report artifacts atomically:
//
//	m := files.NewManager(logger)
//	err := m.WriteWith(paths.ReportHTML, func(w io.Writer) error {
//	    return renderer.Render(ctx, w, doc)
//	})
package files
