// Package scanner reads Go packages from disk and describes their types and
// method signatures for pointcut matching.
package scanner

import (
	"go/ast"
	"go/token"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/internal/logging"
	"github.com/toyz/weave/internal/utils"
	"github.com/toyz/weave/pkg/pointcut"
)

// Kind classifies a scanned type
type Kind string

const (
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindOther     Kind = "type"
)

// Type is a named type found in the scanned source
type Type struct {
	Name     string // qualified name, e.g. example.com.shop.order.Service
	Package  string // import path
	Kind     Kind
	Methods  []pointcut.MethodSignature
	Position token.Position

	// Supertypes are the scanned interfaces whose method set this type has
	Supertypes []pointcut.TypeDescriptor
}

// Descriptor returns the type as a supertype descriptor
func (t *Type) Descriptor() pointcut.TypeDescriptor {
	desc := pointcut.TypeDescriptor{Name: t.Name}
	for _, m := range t.Methods {
		desc.Methods = append(desc.Methods, m.Key())
	}
	return desc
}

// Result holds every type found by a scan, sorted by name
type Result struct {
	Types []*Type
}

// Signatures returns the method signatures of all types in order
func (r *Result) Signatures() []pointcut.MethodSignature {
	var sigs []pointcut.MethodSignature
	for _, t := range r.Types {
		sigs = append(sigs, t.Methods...)
	}
	return sigs
}

// Lookup finds a type by qualified name
func (r *Result) Lookup(name string) (*Type, bool) {
	i := sort.Search(len(r.Types), func(i int) bool { return r.Types[i].Name >= name })
	if i < len(r.Types) && r.Types[i].Name == name {
		return r.Types[i], true
	}
	return nil, false
}

// Options control a scan
type Options struct {
	// Recursive descends into subdirectories of the given paths
	Recursive bool

	// ExportedOnly skips unexported methods
	ExportedOnly bool
}

// Scanner extracts method signatures from Go source
type Scanner struct {
	opts      Options
	processor *utils.FileProcessor
	gomod     *utils.GoModParser
	logger    zerolog.Logger
}

// New creates a scanner
func New(opts Options) *Scanner {
	reader := utils.NewFileReader()
	return &Scanner{
		opts:      opts,
		processor: utils.NewFileProcessorWithReader(reader),
		gomod:     utils.NewGoModParser(reader),
		logger:    logging.Component("scanner"),
	}
}

// Scan reads the Go packages in paths
func (s *Scanner) Scan(paths ...string) (*Result, error) {
	done := logging.LogOperationStart(s.logger, "scan")
	defer done()

	if len(paths) == 0 {
		paths = []string{"."}
	}
	dirs, err := s.packageDirs(paths)
	if err != nil {
		return nil, err
	}

	var all []*Type
	var scanErrs *errors.MultipleErrors
	for _, dir := range dirs {
		types, err := s.scanPackage(dir)
		if err != nil {
			errors.AddToMultiple(&scanErrs, errors.WrapScanError(dir, err))
			continue
		}
		all = append(all, types...)
	}
	if err := scanErrs.ErrorOrNil(); err != nil {
		return nil, err
	}

	linkSupertypes(all)
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	s.logger.Debug().Int("packages", len(dirs)).Int("types", len(all)).Msg("scan finished")
	return &Result{Types: all}, nil
}

// packageDirs expands paths into package directories. A path ending in "/..."
// is scanned recursively whatever Options.Recursive says.
func (s *Scanner) packageDirs(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	for _, path := range paths {
		root, recursive := splitPattern(path)
		found, err := s.processor.PackageDirs([]string{root}, recursive || s.opts.Recursive)
		if err != nil {
			return nil, errors.WrapFileSystemError("read directory", root, err)
		}
		for _, dir := range found {
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs, nil
}

func splitPattern(path string) (string, bool) {
	if path == "..." {
		return ".", true
	}
	if !strings.HasSuffix(path, "/...") {
		return path, false
	}
	root := strings.TrimSuffix(path, "/...")
	if root == "" {
		root = "."
	}
	return root, true
}

// pkgScan is the state of scanning one package
type pkgScan struct {
	importPath string
	name       string
	types      map[string]*Type
	interfaces map[string]*ast.InterfaceType
	typeParams map[string]map[string]bool
}

func (s *Scanner) scanPackage(dir string) ([]*Type, error) {
	files, name, err := s.processor.ParseDirectoryFiles(dir)
	if err != nil {
		return nil, err
	}

	importPath, err := s.gomod.ImportPath(dir)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", dir).Msg("no module found, using the package name as import path")
		importPath = name
	}

	p := &pkgScan{
		importPath: importPath,
		name:       name,
		types:      make(map[string]*Type),
		interfaces: make(map[string]*ast.InterfaceType),
		typeParams: make(map[string]map[string]bool),
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		s.collectTypes(p, files[path])
	}
	for _, path := range paths {
		s.collectMethods(p, files[path])
	}
	for ifaceName, iface := range p.interfaces {
		t := p.types[ifaceName]
		t.Methods = s.interfaceMethods(p, t.Name, iface, p.typeParams[ifaceName], map[string]bool{ifaceName: true})
	}

	types := make([]*Type, 0, len(p.types))
	for _, t := range p.types {
		sort.Slice(t.Methods, func(i, j int) bool { return t.Methods[i].Name < t.Methods[j].Name })
		types = append(types, t)
	}
	s.logger.Debug().Str("package", importPath).Int("types", len(types)).Msg("package scanned")
	return types, nil
}

func (s *Scanner) collectTypes(p *pkgScan, file *ast.File) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			t := &Type{
				Name:     pointcut.QualifiedName(p.importPath, ts.Name.Name),
				Package:  p.importPath,
				Kind:     KindOther,
				Position: s.processor.Reader().Position(ts.Pos()),
			}
			switch typ := ts.Type.(type) {
			case *ast.StructType:
				t.Kind = KindStruct
			case *ast.InterfaceType:
				t.Kind = KindInterface
				p.interfaces[ts.Name.Name] = typ
			}
			p.types[ts.Name.Name] = t

			params := make(map[string]bool)
			if ts.TypeParams != nil {
				for _, field := range ts.TypeParams.List {
					for _, n := range field.Names {
						params[n.Name] = true
					}
				}
			}
			p.typeParams[ts.Name.Name] = params
		}
	}
}

func (s *Scanner) collectMethods(p *pkgScan, file *ast.File) {
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		if s.opts.ExportedOnly && !fn.Name.IsExported() {
			continue
		}

		recv, params := receiverName(fn.Recv.List[0].Type)
		t, ok := p.types[recv]
		if !ok {
			s.logger.Debug().Str("receiver", recv).Str("method", fn.Name.Name).Msg("method on unknown type skipped")
			continue
		}
		t.Methods = append(t.Methods, pointcut.MethodSignature{
			DeclaringType: t.Name,
			Name:          fn.Name.Name,
			Params:        fieldTypes(fn.Type.Params, p.name, params),
			Return:        returnType(fieldTypes(fn.Type.Results, p.name, params)),
		})
	}
}

// interfaceMethods lists the methods of an interface, including those of
// interfaces it embeds from the same package
func (s *Scanner) interfaceMethods(p *pkgScan, fqn string, iface *ast.InterfaceType, params, visiting map[string]bool) []pointcut.MethodSignature {
	var methods []pointcut.MethodSignature
	if iface.Methods == nil {
		return methods
	}
	for _, field := range iface.Methods.List {
		if ft, ok := field.Type.(*ast.FuncType); ok {
			for _, name := range field.Names {
				if s.opts.ExportedOnly && !name.IsExported() {
					continue
				}
				methods = append(methods, pointcut.MethodSignature{
					DeclaringType: fqn,
					Name:          name.Name,
					Params:        fieldTypes(ft.Params, p.name, params),
					Return:        returnType(fieldTypes(ft.Results, p.name, params)),
				})
			}
			continue
		}

		ident, ok := field.Type.(*ast.Ident)
		if !ok {
			s.logger.Debug().Str("interface", fqn).Msg("embedded element from another package skipped")
			continue
		}
		embedded, ok := p.interfaces[ident.Name]
		if !ok || visiting[ident.Name] {
			continue
		}
		visiting[ident.Name] = true
		for _, m := range s.interfaceMethods(p, fqn, embedded, p.typeParams[ident.Name], visiting) {
			m.DeclaringType = fqn
			methods = append(methods, m)
		}
	}
	return methods
}

// linkSupertypes records, for every non-interface type, each scanned interface
// whose complete method set the type has
func linkSupertypes(types []*Type) {
	var interfaces []pointcut.TypeDescriptor
	for _, t := range types {
		if t.Kind == KindInterface && len(t.Methods) > 0 {
			interfaces = append(interfaces, t.Descriptor())
		}
	}
	sort.Slice(interfaces, func(i, j int) bool { return interfaces[i].Name < interfaces[j].Name })

	for _, t := range types {
		if t.Kind == KindInterface || len(t.Methods) == 0 {
			continue
		}
		own := t.Descriptor()
		for _, iface := range interfaces {
			if implements(own, iface) {
				t.Supertypes = append(t.Supertypes, iface)
			}
		}
		for i := range t.Methods {
			t.Methods[i].Supertypes = t.Supertypes
		}
	}
}

func implements(t, iface pointcut.TypeDescriptor) bool {
	for _, key := range iface.Methods {
		if !t.Declares(key) {
			return false
		}
	}
	return true
}
