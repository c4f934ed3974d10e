package runtime

import (
	"os"
	"path/filepath"
)

// fsLoader resolves specifiers against the filesystem, rooted at the
// directory it is built with (leaves "how a specifier
// becomes source text" host-defined). internal/modules never constructs
// one of these directly; New builds one rooted at the working directory
// "." and hands it to modules.NewLinker when the host supplies no
// resolver through WithModuleResolver.
type fsLoader struct {
	root string
}

func newFSLoader(root string) *fsLoader {
	return &fsLoader{root: root}
}

// Resolve implements modules.Loader: a bare specifier is treated as
// relative to referrer's own directory (or the loader's root for the
// entry module, whose referrer is ""), always ending in ".js" absent an
// explicit extension, and then cleaned with filepath.Clean so the same
// file reached two different ways shares one Record. The result is
// absolute only when the root or the specifier is.
func (l *fsLoader) Resolve(specifier, referrer string) (string, error) {
	base := l.root
	if referrer != "" {
		base = filepath.Dir(referrer)
	}
	path := specifier
	if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}
	if filepath.Ext(path) == "" {
		path += ".js"
	}
	return filepath.Clean(path), nil
}

// Load implements modules.Loader by reading resolved straight off disk.
func (l *fsLoader) Load(resolved string) (string, error) {
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
