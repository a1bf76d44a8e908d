package corpus

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// FSOptions contains configuration options for the filesystem source.
type FSOptions struct {
	// Extensions limits which files are indexed (with leading dot).
	Extensions []string

	// SkipDirs are directory names pruned from the walk.
	SkipDirs []string

	// ChunkLimit is the maximum chunk size in bytes.
	ChunkLimit int

	// MaxFiles caps how many files are read. 0 means unlimited.
	MaxFiles int
}

// DefaultFSOptions contains the default configuration options.
var DefaultFSOptions = FSOptions{
	Extensions: []string{
		".txt", ".md", ".py", ".js", ".json", ".html", ".css",
		".ts", ".go", ".rs", ".java", ".c", ".h",
	},
	SkipDirs: []string{
		".git", "node_modules", "__pycache__", "venv", ".venv",
		".env", "dist", "build", ".idea", ".vscode",
	},
	ChunkLimit: 8000,
}

// FSSource walks a directory tree and yields one item per sanitized chunk.
type FSSource struct {
	root string
	opts FSOptions

	extensions map[string]struct{}
	skipDirs   map[string]struct{}
}

var _ Source = (*FSSource)(nil)

// NewFSSource creates a filesystem source rooted at root.
func NewFSSource(root string, optFns ...func(o *FSOptions)) *FSSource {
	opts := DefaultFSOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	extensions := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[ext] = struct{}{}
	}
	skipDirs := make(map[string]struct{}, len(opts.SkipDirs))
	for _, dir := range opts.SkipDirs {
		skipDirs[dir] = struct{}{}
	}

	return &FSSource{
		root:       root,
		opts:       opts,
		extensions: extensions,
		skipDirs:   skipDirs,
	}
}

// Items walks the tree lazily in lexical order. Unreadable files yield an
// error item and the walk continues; a single bad file must not abort
// indexing of the rest of the corpus.
func (s *FSSource) Items(ctx context.Context) iter.Seq2[Item, error] {
	return func(yield func(Item, error) bool) {
		filesSeen := 0
		stop := false

		_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if stop || ctx.Err() != nil {
				return filepath.SkipAll
			}
			if err != nil {
				if !yield(Item{Key: path}, err) {
					stop = true
					return filepath.SkipAll
				}
				return nil
			}
			if d.IsDir() {
				if _, skip := s.skipDirs[d.Name()]; skip {
					return filepath.SkipDir
				}
				return nil
			}
			if _, ok := s.extensions[filepath.Ext(d.Name())]; !ok {
				return nil
			}
			if s.opts.MaxFiles > 0 && filesSeen >= s.opts.MaxFiles {
				return filepath.SkipAll
			}
			filesSeen++

			raw, err := os.ReadFile(path)
			if err != nil {
				if !yield(Item{Key: path}, err) {
					stop = true
					return filepath.SkipAll
				}
				return nil
			}

			for _, chunk := range Split(string(raw), s.opts.ChunkLimit) {
				clean := Sanitize(chunk.Text)
				if clean == "" {
					continue
				}
				key := filepath.ToSlash(path) + "::" + chunk.ID
				if !yield(Item{Key: key, Text: clean}, nil) {
					stop = true
					return filepath.SkipAll
				}
			}
			return nil
		})
	}
}
