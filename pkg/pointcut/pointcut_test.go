package pointcut

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberService = TypeDescriptor{
	Name:    "kibong.aop.member.MemberService",
	Methods: []MethodKey{{Name: "Hello", Params: []string{"string"}}},
}

var (
	memberHello = MethodSignature{
		DeclaringType: "kibong.aop.member.MemberServiceImpl",
		Name:          "Hello",
		Params:        []string{"string"},
		Return:        "string",
		Supertypes:    []TypeDescriptor{memberService},
	}
	memberInternal = MethodSignature{
		DeclaringType: "kibong.aop.member.MemberServiceImpl",
		Name:          "Internal",
		Params:        []string{"string"},
		Return:        "string",
		Supertypes:    []TypeDescriptor{memberService},
	}
	testHello = MethodSignature{
		DeclaringType: "kibong.aop.member.TestClass",
		Name:          "Hello",
		Params:        []string{"string"},
		Return:        "string",
	}
)

func TestExecutionMatching(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		member     bool
		test       bool
	}{
		{"exact match", "execution(public string kibong.aop.member.MemberServiceImpl.Hello(string))", true, false},
		{"all match", "execution(* *(..))", true, true},
		{"name match", "execution(* Hello(..))", true, true},
		{"name prefix", "execution(* Hel*(..))", true, true},
		{"name infix", "execution(* *el*(..))", true, true},
		{"name mismatch", "execution(* nono(..))", false, false},
		{"package exact type", "execution(* kibong.aop.member.MemberServiceImpl.Hello(..))", true, false},
		{"package any type", "execution(* kibong.aop.member.*.*(..))", true, true},
		{"package too shallow", "execution(* kibong.aop.*.*(..))", false, false},
		{"sub package from member", "execution(* kibong.aop.member..*.*(..))", true, true},
		{"sub package from aop", "execution(* kibong.aop..*.*(..))", true, true},
		{"type exact", "execution(* kibong.aop.member.MemberServiceImpl.*(..))", true, false},
		{"supertype", "execution(* kibong.aop.member.MemberService.*(..))", true, false},
		{"args exact", "execution(* *(string))", true, true},
		{"args none", "execution(* *())", false, false},
		{"args single wildcard", "execution(* *(*))", true, true},
		{"args any", "execution(* *(..))", true, true},
		{"args leading then rest", "execution(* *(string, ..))", true, true},
		{"return type mismatch", "execution(int *(..))", false, false},
		{"private modifier", "execution(private * *(..))", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expression)
			require.NoError(t, err)

			assert.Equal(t, tt.member, p.Matches(memberHello), "MemberServiceImpl.Hello")
			assert.Equal(t, tt.test, p.Matches(testHello), "TestClass.Hello")
		})
	}
}

func TestSupertypeOnlySelectsDeclaredMethods(t *testing.T) {
	impl := MustCompile("execution(* kibong.aop.member.MemberServiceImpl.*(..))")
	iface := MustCompile("execution(* kibong.aop.member.MemberService.*(..))")

	assert.True(t, impl.Matches(memberInternal), "concrete type path matches every method")
	assert.True(t, iface.Matches(memberHello), "interface declares Hello")
	assert.False(t, iface.Matches(memberInternal), "Internal exists only on the implementation")
	assert.False(t, iface.Matches(testHello))

	// same name but different parameters is a different method
	overload := memberHello
	overload.Params = []string{"string", "int"}
	assert.False(t, iface.Matches(overload))
}

func TestTypePathAnyDepth(t *testing.T) {
	p := MustCompile("execution(* a..*.*(..))")

	deep := MethodSignature{DeclaringType: "a.b.c.Type", Name: "Run"}
	shallow := MethodSignature{DeclaringType: "a.Type", Name: "Run"}
	other := MethodSignature{DeclaringType: "b.Type", Name: "Run"}

	assert.True(t, p.Matches(deep))
	assert.True(t, p.Matches(shallow))
	assert.False(t, p.Matches(other))
}

func TestTrailingAnyDepthBeforeMethod(t *testing.T) {
	p := MustCompile("execution(* kibong.aop.order..*(..))")

	assert.True(t, p.Matches(MethodSignature{DeclaringType: "kibong.aop.order.OrderService", Name: "OrderItem"}))
	assert.True(t, p.Matches(MethodSignature{DeclaringType: "kibong.aop.order.repo.OrderRepository", Name: "Save"}))
	assert.False(t, p.Matches(MethodSignature{DeclaringType: "kibong.aop.member.MemberServiceImpl", Name: "Hello"}))
	assert.False(t, p.Matches(MethodSignature{DeclaringType: "kibong.aop.order", Name: "Loose"}))
}

func TestServiceSuffixAcrossPackages(t *testing.T) {
	p := MustCompile("execution(* *..*Service.*(..))")

	assert.True(t, p.Matches(MethodSignature{DeclaringType: "kibong.aop.order.OrderService", Name: "OrderItem"}))
	assert.False(t, p.Matches(MethodSignature{DeclaringType: "kibong.aop.order.OrderRepository", Name: "Save"}))
}

func TestMethodNameWildcards(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"hel*", "hello", true},
		{"*llo", "hello", true},
		{"*el*", "hello", true},
		{"h*o", "hello", true},
		{"nono", "hello", false},
		{"hello", "hello", true},
		{"*", "anything", true},
		{"fo*oo", "foo", false},
		{"fo*oo", "fooo", true},
		{"a*b*c", "aXbYc", true},
		{"a*b*c", "acb", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.pattern, tt.name), func(t *testing.T) {
			assert.Equal(t, tt.want, NamePattern(tt.pattern).Match(tt.name))
		})
	}
}

func TestParameterPatterns(t *testing.T) {
	tests := []struct {
		expression string
		params     []string
		want       bool
	}{
		{"execution(* *(..))", nil, true},
		{"execution(* *(..))", []string{"int", "string", "bool"}, true},
		{"execution(* *())", nil, true},
		{"execution(* *())", []string{"string"}, false},
		{"execution(* *(string))", []string{"string"}, true},
		{"execution(* *(string))", nil, false},
		{"execution(* *(string, ..))", []string{"string"}, true},
		{"execution(* *(string, ..))", []string{"string", "int", "int"}, true},
		{"execution(* *(string, ..))", []string{"int", "string"}, false},
		{"execution(* *(*, int))", []string{"bool", "int"}, true},
		{"execution(* *(*, int))", []string{"bool"}, false},
		{"execution(* *(.., error))", []string{"int", "error"}, true},
		{"execution(* *(context.Context, ..))", []string{"context.Context", "string"}, true},
		{"execution(* *(...string))", []string{"...string"}, true},
		{"execution(* *(*order.Item))", []string{"*order.Item"}, true},
		{"execution(* *(*order.Item))", []string{"order.Item"}, false},
		{"execution(* *([]string, map[string]int))", []string{"[]string", "map[string]int"}, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s%v", tt.expression, tt.params), func(t *testing.T) {
			p := MustCompile(tt.expression)
			assert.Equal(t, tt.want, p.Matches(MethodSignature{Name: "Run", Params: tt.params}))
		})
	}
}

func TestReturnTypes(t *testing.T) {
	void := MethodSignature{Name: "Close"}
	pointer := MethodSignature{Name: "Find", Return: "*order.Item"}

	assert.True(t, MustCompile("execution(void *(..))").Matches(void))
	assert.False(t, MustCompile("execution(void *(..))").Matches(pointer))
	assert.True(t, MustCompile("execution(* *(..))").Matches(void))
	assert.True(t, MustCompile("execution(*order.Item *(..))").Matches(pointer))
	assert.False(t, MustCompile("execution(string *(..))").Matches(void))
}

func TestTypeNamePointers(t *testing.T) {
	tests := []struct {
		pattern  TypeNamePattern
		typeName string
		want     bool
	}{
		{"*order.Item", "*order.Item", true},
		{"*order.Item", "Xorder.Item", false},
		{"[]*order.Item", "[]*order.Item", true},
		{"[]*order.Item", "[]Xorder.Item", false},
		{"map[string]*order.Item", "map[string]*order.Item", true},
		{"map[string]*order.Item", "map[string]order.Item", false},
		{"...*order.Item", "...*order.Item", true},
		{"*order.*", "*order.Item", true},
		{"*order.*", "order.Item", false},
		{"order.*Item", "order.OrderItem", true},
		{"[]*", "[]int", true},
		{"[]*", "[]*order.Item", true},
		{"*[]int", "*[]int", true},
		{"*[]int", "[][]int", false},
		{"*.Item", "order.Item", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern)+"/"+tt.typeName, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.Match(tt.typeName))
		})
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		expression string
		sig        MethodSignature
		want       bool
	}{
		{"within(kibong.aop.member.MemberServiceImpl)", memberInternal, true},
		{"within(kibong.aop.member.MemberService)", memberHello, true},
		{"within(kibong.aop.member.MemberService)", memberInternal, false},
		{"within(kibong.aop..)", testHello, true},
		{"within(kibong.aop.*)", testHello, false},
		{"within(*..TestClass)", testHello, true},
	}

	for _, tt := range tests {
		t.Run(tt.expression+"/"+tt.sig.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustCompile(tt.expression).Matches(tt.sig))
		})
	}
}

func TestBooleanComposition(t *testing.T) {
	tests := []struct {
		expression string
		member     bool
		test       bool
	}{
		{"execution(* Hello(..)) && within(kibong.aop.member.TestClass)", false, true},
		{"execution(* nono(..)) || within(kibong.aop.member.TestClass)", false, true},
		{"!within(kibong.aop.member.TestClass)", true, false},
		{"!(execution(* nono(..)) || within(*..TestClass)) && execution(* *(string))", true, false},
		{"!!execution(* Hello(..))", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			p := MustCompile(tt.expression)
			assert.Equal(t, tt.member, p.Matches(memberHello))
			assert.Equal(t, tt.test, p.Matches(testHello))
		})
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	expressions := []string{
		"execution(* *(..))",
		"execution(* kibong.aop..*.*(string, ..))",
		"execution(* kibong.aop.member.MemberService.*(..))",
		"within(*..TestClass) || execution(* nono())",
	}
	signatures := []MethodSignature{memberHello, memberInternal, testHello, {Name: "Close"}}

	for _, expr := range expressions {
		first := MustCompile(expr)
		second := MustCompile(expr)
		for _, sig := range signatures {
			assert.Equal(t, first.Matches(sig), second.Matches(sig), "%s vs %s", expr, sig)
		}
		assert.Equal(t, first.Canonical(), second.Canonical())
	}
}

func TestCanonicalAndPatterns(t *testing.T) {
	p := MustCompile("execution(public  string   kibong.aop..*.Hello( string , .. )) && within(a.B)")

	assert.Equal(t, "(execution(public string kibong.aop..*.Hello(string, ..)) && within(a.B))", p.Canonical())
	require.Len(t, p.Patterns(), 1)

	pattern := p.Patterns()[0]
	assert.Equal(t, Public, pattern.Modifier)
	assert.Equal(t, TypeNamePattern("string"), pattern.Return)
	assert.Equal(t, TypePattern{"kibong", "aop", AnyDepth, "*"}, pattern.Type)
	assert.Equal(t, NamePattern("Hello"), pattern.Name)
	assert.Equal(t, ParamPatterns{"string", AnyDepth}, pattern.Params)
	assert.True(t, Matches(pattern, memberHello))
}

func TestMatchesNil(t *testing.T) {
	assert.False(t, Matches(nil, memberHello))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		msg        string
		offending  string
	}{
		{"empty", "   ", "empty expression", ""},
		{"unclosed", "execution(* *(..)", "unbalanced parentheses", "(* *(..)"},
		{"extra close", "execution(* *(..)))", "unbalanced parentheses", ")"},
		{"empty method name", "execution(* kibong.aop.(..))", "empty method name", "kibong.aop."},
		{"missing separator", "execution(* a b(..))", "missing separator", "b"},
		{"leading separator", "within(..Foo)", "misplaced separator", ".."},
		{"unresolved reference", "allOrder()", "unresolved pointcut reference", "allOrder()"},
		{"bare designator", "execution()", "", ""},
		{"missing method", "execution(* (..))", "", ""},
		{"dangling operator", "execution(* *(..)) &&", "", ""},
		{"unknown designator", "args(* *(..))", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expression)
			require.Error(t, err)
			assert.Nil(t, p)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.expression, perr.Expression)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, perr.Msg)
			}
			if tt.offending != "" {
				assert.Equal(t, tt.offending, perr.Offending)
			}
			assert.Contains(t, err.Error(), "invalid pointcut")
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("execution(") })
}

func TestConcurrentMatching(t *testing.T) {
	p := MustCompile("execution(* kibong.aop.member.MemberService.*(..)) || within(*..TestClass)")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.True(t, p.Matches(memberHello))
				assert.False(t, p.Matches(memberInternal))
				assert.True(t, p.Matches(testHello))
			}
		}()
	}
	wg.Wait()
}
