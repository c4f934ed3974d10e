package envrec

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/vesper-lang/vesper/internal/gc"
	"github.com/vesper-lang/vesper/internal/object"
	"github.com/vesper-lang/vesper/internal/value"
)

func testHeap() *gc.Heap {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return gc.New(log.WithField("test", true))
}

func TestDeclarative_TDZReadFails(t *testing.T) {
	heap := testHeap()
	e := NewDeclarative(heap, nil)
	if err := e.CreateMutableBinding("x", false); err != nil {
		t.Fatal(err)
	}
	if _, err := e.GetBindingValue("x", false); err == nil {
		t.Fatal("expected ReferenceError reading an uninitialized binding")
	}
	if err := e.InitializeBinding("x", value.Num(1)); err != nil {
		t.Fatal(err)
	}
	v, err := e.GetBindingValue("x", false)
	if err != nil || v.Float() != 1 {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestDeclarative_ConstReassignIsTypeError(t *testing.T) {
	heap := testHeap()
	e := NewDeclarative(heap, nil)
	_ = e.CreateImmutableBinding("y", true)
	_ = e.InitializeBinding("y", value.Num(2))
	err := e.SetMutableBinding("y", value.Num(3), true)
	if err == nil {
		t.Fatal("expected assignment to constant to fail")
	}
	if be, ok := err.(*BindingError); !ok || be.Kind != "TypeError" {
		t.Fatalf("expected TypeError, got %v", err)
	}
}

func TestResolve_WalksOuterChain(t *testing.T) {
	heap := testHeap()
	outer := NewDeclarative(heap, nil)
	_ = outer.CreateMutableBinding("a", false)
	_ = outer.InitializeBinding("a", value.Num(42))
	inner := NewDeclarative(heap, outer)
	_ = inner.CreateMutableBinding("b", false)

	found, ok := Resolve(inner, "a")
	if !ok || found != outer {
		t.Fatalf("expected to resolve 'a' in outer, got %v %v", found, ok)
	}
	if _, ok := Resolve(inner, "missing"); ok {
		t.Fatal("expected 'missing' to be unresolved")
	}
}

func TestObjectEnv_UnscopablesBlocksWithBinding(t *testing.T) {
	heap := testHeap()
	target := object.New(heap, value.Undef())
	target.DefineOwnProperty(object.StringKey("hidden"), object.DataDescriptor(value.Num(1), true, true, true))

	blockList := object.New(heap, value.Undef())
	blockList.DefineOwnProperty(object.StringKey("hidden"), object.DataDescriptor(value.Bool(true), true, true, true))
	sym := object.SymbolKey(new(int))
	SetUnscopablesSymbol(sym)
	target.DefineOwnProperty(sym, object.DataDescriptor(value.ObjectRef(blockList), false, false, false))

	withEnv := NewObjectEnv(heap, nil, target, true)
	if withEnv.HasBinding("hidden") {
		t.Fatal("expected @@unscopables to hide 'hidden' from a with-environment")
	}

	plainEnv := NewObjectEnv(heap, nil, target, false)
	if !plainEnv.HasBinding("hidden") {
		t.Fatal("expected a non-with object environment to see 'hidden'")
	}
}

func TestFunctionEnv_ThisBindingLifecycle(t *testing.T) {
	heap := testHeap()
	fn := object.New(heap, value.Undef())
	e := NewFunctionEnv(heap, nil, fn, ThisUninitialized)

	if !e.HasThisBinding() {
		t.Fatal("ordinary function environments always have a this binding slot")
	}
	if _, err := e.GetThisBinding(); err == nil {
		t.Fatal("expected ReferenceError before super()/this is bound")
	}
	if err := e.BindThisValue(value.ObjectRef(fn)); err != nil {
		t.Fatal(err)
	}
	if err := e.BindThisValue(value.ObjectRef(fn)); err == nil {
		t.Fatal("expected binding this twice to fail")
	}
	v, err := e.GetThisBinding()
	if err != nil || v.Ref() != fn {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestFunctionEnv_ArrowIsLexical(t *testing.T) {
	heap := testHeap()
	fn := object.New(heap, value.Undef())
	e := NewFunctionEnv(heap, nil, fn, ThisLexical)
	if e.HasThisBinding() {
		t.Fatal("arrow function environments must not bind their own this")
	}
}

func TestFunctionEnv_SuperBaseWalksHomeObjectPrototype(t *testing.T) {
	heap := testHeap()
	proto := object.New(heap, value.Undef())
	home := object.New(heap, value.ObjectRef(proto))
	fn := object.New(heap, value.Undef())
	e := NewFunctionEnv(heap, nil, fn, ThisInitialized)
	e.HomeObject = home

	base := e.GetSuperBase()
	if base.Ref() != proto {
		t.Fatalf("expected super base to be home object's prototype, got %v", base)
	}
}

func TestGetThisEnvironment_SkipsDeclarativeScopes(t *testing.T) {
	heap := testHeap()
	fn := object.New(heap, value.Undef())
	funcEnv := NewFunctionEnv(heap, nil, fn, ThisInitialized)
	_ = funcEnv.BindThisValue(value.ObjectRef(fn))
	block := NewDeclarative(heap, funcEnv)

	got := GetThisEnvironment(block)
	if got != funcEnv {
		t.Fatalf("expected get_this_environment to skip to the function env, got %v", got)
	}
}

func TestGlobalEnv_VarVsLexicalSeparation(t *testing.T) {
	heap := testHeap()
	global := object.New(heap, value.Undef())
	e := NewGlobalEnv(heap, global)

	_ = e.CreateGlobalVarBinding("v", false)
	_ = e.CreateGlobalLexicalBinding("l", false)

	if !e.HasBinding("v") || !e.HasBinding("l") {
		t.Fatal("expected both var and lexical globals to be visible")
	}
	if !e.HasLexicalDeclaration("l") {
		t.Fatal("expected 'l' to be recorded as a lexical declaration")
	}
	if e.HasLexicalDeclaration("v") {
		t.Fatal("var declarations are not lexical")
	}

	if err := e.InitializeBinding("l", value.Num(7)); err != nil {
		t.Fatal(err)
	}
	v, err := e.GetBindingValue("l", false)
	if err != nil || v.Float() != 7 {
		t.Fatalf("got %v, %v", v, err)
	}

	if !global.HasProperty(object.StringKey("v")) {
		t.Fatal("expected var binding to materialize as a global object property")
	}
	if global.HasProperty(object.StringKey("l")) {
		t.Fatal("lexical globals must not become global object properties")
	}
}

func TestModuleEnv_IndirectBindingResolvesLive(t *testing.T) {
	heap := testHeap()
	source := NewModuleEnv(heap)
	_ = source.CreateMutableBinding("counter", false)
	_ = source.InitializeBinding("counter", value.Num(1))

	importer := NewModuleEnv(heap)
	importer.CreateImportBinding("counter", source, "counter", func(m any, name string) (value.Value, error) {
		return m.(*ModuleEnv).GetBindingValue(name, true)
	})

	v, err := importer.GetBindingValue("counter", true)
	if err != nil || v.Float() != 1 {
		t.Fatalf("got %v, %v", v, err)
	}

	_ = source.SetMutableBinding("counter", value.Num(2), true)
	v, err = importer.GetBindingValue("counter", true)
	if err != nil || v.Float() != 2 {
		t.Fatalf("expected live binding to observe updated value, got %v, %v", v, err)
	}
}

func TestPrivateEnv_NestedClassResolution(t *testing.T) {
	outer := NewPrivateEnv(nil)
	outer.Declare("#x", &PrivateNameBinding{Kind: PrivateField, Key: object.SymbolKey(new(int))})
	inner := NewPrivateEnv(outer)
	inner.Declare("#y", &PrivateNameBinding{Kind: PrivateField, Key: object.SymbolKey(new(int))})

	if _, ok := inner.Resolve("#x"); !ok {
		t.Fatal("expected inner class body to resolve an enclosing class's private name")
	}
	if _, ok := outer.Resolve("#y"); ok {
		t.Fatal("outer class body must not see an inner class's private name")
	}
}
