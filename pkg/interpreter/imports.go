package interpreter

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/voidwyrm-2/Mend/pkg/diag"
)

// SourceExt is appended to bare import names.
const SourceExt = ".mend"

// ImportPath maps an import name to a path under root. Names containing a
// dot are taken verbatim.
func ImportPath(root, name string) string {
	if !strings.Contains(name, ".") {
		name += SourceExt
	}
	return filepath.Join(root, name)
}

// importModule runs the named file in a fresh scope and merges its bindings
// into the importer without overwriting existing names.
func (i *Interpreter) importModule(f *frame, name string, line int) error {
	path := ImportPath(f.inv.Root, name)
	info, err := i.opts.Files.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return diag.Errorf(diag.ImportError, line, "could not import '%s': %s does not exist", name, path)
		}
		return diag.Errorf(diag.ImportError, line, "could not import '%s': %v", name, err)
	}
	if !info.Mode().IsRegular() {
		return diag.Errorf(diag.ImportError, line, "could not import '%s': wrong path type, %s is not a file", name, path)
	}
	data, err := i.opts.Files.ReadFile(path)
	if err != nil {
		return diag.Errorf(diag.ImportError, line, "could not import '%s': %v", name, err)
	}

	res, err := i.child(f, line, Invocation{
		Lines: i.opts.Lexer.LexSource(string(data)),
		Mode:  ModeImport,
		File:  path,
	})
	if err != nil {
		return err
	}
	if res.Kind == ResultAbort {
		return abortSignal{cause: res.Err}
	}
	added := f.scope.Merge(res.Scope)
	i.tracef(f, line, "imported %s: %s", path, strings.Join(added, ", "))
	return nil
}
