package scanner

import (
	"go/ast"
	"go/types"
	"strings"
)

// typeString renders a type expression the way reflect spells the same type:
// named types of the scanned package are qualified with its name and the
// empty interface is "any".
func typeString(expr ast.Expr, pkg string, typeParams map[string]bool) string {
	switch t := expr.(type) {
	case *ast.Ident:
		if typeParams[t.Name] || types.Universe.Lookup(t.Name) != nil || pkg == "" {
			return t.Name
		}
		return pkg + "." + t.Name
	case *ast.StarExpr:
		return "*" + typeString(t.X, pkg, typeParams)
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return ident.Name + "." + t.Sel.Name
		}
		return t.Sel.Name
	case *ast.ParenExpr:
		return typeString(t.X, pkg, typeParams)
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + typeString(t.Elt, pkg, typeParams)
		}
		if lit, ok := t.Len.(*ast.BasicLit); ok {
			return "[" + lit.Value + "]" + typeString(t.Elt, pkg, typeParams)
		}
		return "[...]" + typeString(t.Elt, pkg, typeParams)
	case *ast.Ellipsis:
		return "..." + typeString(t.Elt, pkg, typeParams)
	case *ast.MapType:
		return "map[" + typeString(t.Key, pkg, typeParams) + "]" + typeString(t.Value, pkg, typeParams)
	case *ast.InterfaceType:
		if t.Methods == nil || len(t.Methods.List) == 0 {
			return "any"
		}
		return "interface{...}"
	case *ast.StructType:
		if t.Fields == nil || len(t.Fields.List) == 0 {
			return "struct {}"
		}
		return "struct{...}"
	case *ast.FuncType:
		params := fieldTypes(t.Params, pkg, typeParams)
		results := fieldTypes(t.Results, pkg, typeParams)
		out := "func(" + strings.Join(params, ", ") + ")"
		switch len(results) {
		case 0:
		case 1:
			out += " " + results[0]
		default:
			out += " (" + strings.Join(results, ", ") + ")"
		}
		return out
	case *ast.ChanType:
		switch t.Dir {
		case ast.SEND:
			return "chan<- " + typeString(t.Value, pkg, typeParams)
		case ast.RECV:
			return "<-chan " + typeString(t.Value, pkg, typeParams)
		default:
			return "chan " + typeString(t.Value, pkg, typeParams)
		}
	case *ast.IndexExpr:
		return typeString(t.X, pkg, typeParams) + "[" + typeString(t.Index, pkg, typeParams) + "]"
	case *ast.IndexListExpr:
		args := make([]string, len(t.Indices))
		for i, index := range t.Indices {
			args[i] = typeString(index, pkg, typeParams)
		}
		return typeString(t.X, pkg, typeParams) + "[" + strings.Join(args, ",") + "]"
	default:
		return "unknown"
	}
}

// fieldTypes expands a field list into one type per declared name, so that
// "a, b int" yields two entries
func fieldTypes(fields *ast.FieldList, pkg string, typeParams map[string]bool) []string {
	out := make([]string, 0)
	if fields == nil {
		return out
	}
	for _, field := range fields.List {
		typ := typeString(field.Type, pkg, typeParams)
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, typ)
		}
	}
	return out
}

// returnType drops a trailing error result and joins the rest
func returnType(results []string) string {
	if n := len(results); n > 0 && results[n-1] == "error" {
		results = results[:n-1]
	}
	switch len(results) {
	case 0:
		return ""
	case 1:
		return results[0]
	}
	return "(" + strings.Join(results, ", ") + ")"
}

// receiverName returns the base type name of a method receiver and the names
// of its type parameters
func receiverName(expr ast.Expr) (string, map[string]bool) {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	params := make(map[string]bool)
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, params
	case *ast.IndexExpr:
		if ident, ok := t.Index.(*ast.Ident); ok {
			params[ident.Name] = true
		}
		name, _ := receiverName(t.X)
		return name, params
	case *ast.IndexListExpr:
		for _, index := range t.Indices {
			if ident, ok := index.(*ast.Ident); ok {
				params[ident.Name] = true
			}
		}
		name, _ := receiverName(t.X)
		return name, params
	}
	return "", params
}
