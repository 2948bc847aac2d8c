package weave

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/toyz/weave/pkg/pointcut"
)

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// TypeInfo describes a target value: its qualified name, the interfaces it is
// known to implement and the signatures of its methods.
type TypeInfo struct {
	Name       string
	Target     any
	Supertypes []pointcut.TypeDescriptor

	methods map[string]*method
	names   []string
}

// Signature returns the signature of the named method
func (t *TypeInfo) Signature(name string) (pointcut.MethodSignature, bool) {
	m, ok := t.methods[name]
	if !ok {
		return pointcut.MethodSignature{}, false
	}
	return m.sig, true
}

// Signatures returns all method signatures sorted by method name
func (t *TypeInfo) Signatures() []pointcut.MethodSignature {
	sigs := make([]pointcut.MethodSignature, 0, len(t.names))
	for _, name := range t.names {
		sigs = append(sigs, t.methods[name].sig)
	}
	return sigs
}

// DescribeOption adjusts how Describe names a target and its supertypes
type DescribeOption func(*describeConfig)

type describeConfig struct {
	name       string
	supertypes []supertype
}

type supertype struct {
	name  string
	iface any
}

// Named overrides the qualified name of the target type
func Named(fqn string) DescribeOption {
	return func(c *describeConfig) { c.name = fqn }
}

// Implements declares that the target implements the interfaces given as nil
// pointers, e.g. (*MemberService)(nil)
func Implements(ifaces ...any) DescribeOption {
	return func(c *describeConfig) {
		for _, iface := range ifaces {
			c.supertypes = append(c.supertypes, supertype{iface: iface})
		}
	}
}

// ImplementsAs is Implements with an explicit qualified name for the interface
func ImplementsAs(fqn string, iface any) DescribeOption {
	return func(c *describeConfig) {
		c.supertypes = append(c.supertypes, supertype{name: fqn, iface: iface})
	}
}

// Describe builds the TypeInfo of target from its method set. Only exported
// methods are visible through reflection.
func Describe(target any, opts ...DescribeOption) (*TypeInfo, error) {
	if target == nil {
		return nil, fmt.Errorf("cannot describe a nil target")
	}
	var cfg describeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	typ := reflect.TypeOf(target)
	info := &TypeInfo{
		Name:    cfg.name,
		Target:  target,
		methods: make(map[string]*method),
	}
	if info.Name == "" {
		named := typ
		if named.Kind() == reflect.Pointer {
			named = named.Elem()
		}
		if named.Name() == "" {
			return nil, fmt.Errorf("type %s has no name, use weave.Named", typ)
		}
		info.Name = pointcut.QualifiedName(named.PkgPath(), named.Name())
	}

	for _, st := range cfg.supertypes {
		desc, err := describeInterface(typ, st)
		if err != nil {
			return nil, err
		}
		info.Supertypes = append(info.Supertypes, desc)
	}

	value := reflect.ValueOf(target)
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		fn := value.Method(i)
		params, ret := signatureTypes(fn.Type())
		info.methods[m.Name] = &method{
			sig: pointcut.MethodSignature{
				DeclaringType: info.Name,
				Name:          m.Name,
				Params:        params,
				Return:        ret,
				Supertypes:    info.Supertypes,
			},
			fn: fn,
		}
		info.names = append(info.names, m.Name)
	}
	return info, nil
}

func describeInterface(target reflect.Type, st supertype) (pointcut.TypeDescriptor, error) {
	ptr := reflect.TypeOf(st.iface)
	if ptr == nil || ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Interface {
		return pointcut.TypeDescriptor{}, fmt.Errorf("supertype must be a nil interface pointer such as (*Service)(nil), got %T", st.iface)
	}
	iface := ptr.Elem()
	if !target.Implements(iface) {
		return pointcut.TypeDescriptor{}, fmt.Errorf("%s does not implement %s", target, iface)
	}

	desc := pointcut.TypeDescriptor{Name: st.name}
	if desc.Name == "" {
		desc.Name = pointcut.QualifiedName(iface.PkgPath(), iface.Name())
	}
	for i := 0; i < iface.NumMethod(); i++ {
		m := iface.Method(i)
		params, _ := signatureTypes(m.Type)
		desc.Methods = append(desc.Methods, pointcut.MethodKey{Name: m.Name, Params: params})
	}
	return desc, nil
}

// signatureTypes renders the parameter and return type names of a function
// type without receiver. A trailing error result is not part of the return type.
func signatureTypes(ft reflect.Type) ([]string, string) {
	params := make([]string, ft.NumIn())
	for i := range params {
		in := ft.In(i)
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			params[i] = "..." + typeName(in.Elem())
			continue
		}
		params[i] = typeName(in)
	}

	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errorType {
		n--
	}
	switch n {
	case 0:
		return params, ""
	case 1:
		return params, typeName(ft.Out(0))
	}
	results := make([]string, n)
	for i := range results {
		results[i] = typeName(ft.Out(i))
	}
	return params, "(" + strings.Join(results, ", ") + ")"
}

// typeName spells a type the way Go source usually does
func typeName(t reflect.Type) string {
	return strings.ReplaceAll(t.String(), "interface {}", "any")
}

// method is a bound method of the target
type method struct {
	sig pointcut.MethodSignature
	fn  reflect.Value
}

func (m *method) returnsError() bool {
	ft := m.fn.Type()
	return ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType
}

// arguments converts args into call values. When the method takes a
// context.Context first and args do not start with one, ctx is supplied.
func (m *method) arguments(ctx context.Context, args []any) ([]reflect.Value, error) {
	ft := m.fn.Type()
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		if len(args) == 0 {
			args = []any{ctx}
		} else if _, ok := args[0].(context.Context); !ok {
			args = append([]any{ctx}, args...)
		}
	}

	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("%w: %s wants at least %d arguments, got %d", ErrBadArguments, m.sig.Name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("%w: %s wants %d arguments, got %d", ErrBadArguments, m.sig.Name, fixed, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		want := ft.In(min(i, ft.NumIn()-1))
		if i >= fixed {
			want = want.Elem()
		}
		v, err := argumentValue(arg, want)
		if err != nil {
			return nil, fmt.Errorf("%w: %s argument %d: %v", ErrBadArguments, m.sig.Name, i, err)
		}
		in[i] = v
	}
	return in, nil
}

func argumentValue(arg any, want reflect.Type) (reflect.Value, error) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", want)
	}
	v := reflect.ValueOf(arg)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, fmt.Errorf("have %s, want %s", v.Type(), want)
	}
	return v, nil
}

func (m *method) invoke(ctx context.Context, args []any) (any, error) {
	in, err := m.arguments(ctx, args)
	if err != nil {
		return nil, err
	}
	return m.results(m.fn.Call(in))
}

// results folds the call results into a single value: nil without results,
// the value itself for one, a []any for several. A trailing error is split off.
func (m *method) results(out []reflect.Value) (any, error) {
	var err error
	if m.returnsError() {
		last := out[len(out)-1]
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		out = out[:len(out)-1]
	}
	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	}
	values := make([]any, len(out))
	for i, v := range out {
		values[i] = v.Interface()
	}
	return values, err
}
