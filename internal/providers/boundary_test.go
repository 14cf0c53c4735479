package providers

import (
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

const (
	modulePrefix    = "github.com/crmarques/ddiconf/"
	providersPrefix = modulePrefix + "internal/providers/"
	sharedPrefix    = providersPrefix + "shared/"
	internalPrefix  = modulePrefix + "internal/"
)

// moduleImports maps every non-test source file under the module root to its
// module-local imports.
func moduleImports(t *testing.T) map[string][]string {
	t.Helper()

	root := filepath.Join("..", "..")
	imports := map[string][]string{}
	fset := token.NewFileSet()
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			name := entry.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		parsedFile, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}

		relative, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		relative = filepath.ToSlash(relative)
		for _, imported := range parsedFile.Imports {
			importPath := strings.Trim(imported.Path.Value, "\"")
			if strings.HasPrefix(importPath, modulePrefix) {
				imports[relative] = append(imports[relative], importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("boundary scan failed: %v", err)
	}
	return imports
}

func TestProvidersDoNotImportSiblingProviderPackages(t *testing.T) {
	t.Parallel()

	for path, imported := range moduleImports(t) {
		if !strings.HasPrefix(path, "internal/providers/") {
			continue
		}
		packageImportPath := modulePrefix + filepath.ToSlash(filepath.Dir(path))

		for _, importPath := range imported {
			if !strings.HasPrefix(importPath, providersPrefix) {
				continue
			}
			if strings.HasPrefix(importPath, sharedPrefix) || importPath == packageImportPath {
				continue
			}
			t.Fatalf("forbidden provider import %q in %s", importPath, path)
		}
	}
}

func TestDomainPackagesDoNotImportInternal(t *testing.T) {
	t.Parallel()

	for path, imported := range moduleImports(t) {
		if strings.HasPrefix(path, "internal/") || strings.HasPrefix(path, "cmd/") {
			continue
		}
		for _, importPath := range imported {
			if strings.HasPrefix(importPath, internalPrefix) {
				t.Fatalf("domain file %s imports internal package %q", path, importPath)
			}
		}
	}
}
