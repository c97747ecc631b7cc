package marshal

import (
	"errors"
	"testing"

	"github.com/tsawler/go-clhost/host"
	"github.com/tsawler/go-clhost/memory"
	"github.com/tsawler/go-clhost/native"
)

func args(vs ...host.Value) []host.Value { return vs }

// TestCheckArityBoundary checks the N and N-1 boundary
func TestCheckArityBoundary(t *testing.T) {
	three := args(host.Int(1), host.Int(2), host.Int(3))

	if err := CheckArity(three, 3); err != nil {
		t.Errorf("Expected len==N to pass, got %v", err)
	}
	if err := CheckArity(three, 2); err != nil {
		t.Errorf("Expected len>N to pass, got %v", err)
	}

	err := CheckArity(three[:2], 3)
	var ae *ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("Expected ArityError, got %v", err)
	}
	if ae.Expected != 3 || ae.Actual != 2 {
		t.Errorf("Expected 3/2, got %d/%d", ae.Expected, ae.Actual)
	}
	if ae.Error() != "Expected 3 arguments, got 2" {
		t.Errorf("Unexpected message %q", ae.Error())
	}
}

func TestCheckKind(t *testing.T) {
	buf, _ := host.NewBuffer(memory.Float32, 4)
	fn := host.Fun(func([]host.Value) (host.Value, error) { return host.Null, nil })

	tests := []struct {
		name string
		v    host.Value
		kind ArgKind
		ok   bool
	}{
		{"string", host.Str("x"), String, true},
		{"number as string", host.Int(1), String, false},
		{"handle", Wrap(native.Kernel(1)), OpaqueHandleRef, true},
		{"null as handle", host.Null, OpaqueHandleRef, false},
		{"array as handle", host.Arr(nil), OpaqueHandleRef, false},
		{"map as handle", host.Obj(host.NewMap()), OpaqueHandleRef, false},
		{"callback", fn, Callback, true},
		{"nil callback", host.Value{Tag: host.TFun}, Callback, false},
		{"int", host.Int(3), Number, true},
		{"float", host.Num(3.5), Number, true},
		{"bool as number", host.Bool(true), Number, false},
		{"array", host.Arr([]host.Value{}), ArrayLike, true},
		{"buffer as array", host.Buf(buf), ArrayLike, false},
		{"buffer", host.Buf(buf), BufferLike, true},
		{"array as buffer", host.Arr(nil), BufferLike, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckKind(args(tt.v), 0, tt.kind)
			if tt.ok && err != nil {
				t.Errorf("Expected pass, got %v", err)
			}
			if !tt.ok {
				var ke *KindError
				if !errors.As(err, &ke) {
					t.Fatalf("Expected KindError, got %v", err)
				}
				if ke.Index != 0 || ke.Expected != tt.kind {
					t.Errorf("Expected index 0 kind %s, got %d %s", tt.kind, ke.Index, ke.Expected)
				}
			}
		})
	}
}

func TestKindErrorMessage(t *testing.T) {
	err := CheckKind(args(host.Int(0), host.Int(0), host.Int(0)), 2, String)
	if err == nil || err.Error() != "Argument 2 must be a string" {
		t.Errorf("Unexpected message: %v", err)
	}

	err = CheckKind(args(host.Str("ok")), 1, OpaqueHandleRef)
	var ke *KindError
	if !errors.As(err, &ke) || ke.Actual != "missing" {
		t.Errorf("Expected missing argument to fail as KindError, got %v", err)
	}
}

// TestSignatureFirstFailureWins checks left-to-right short-circuiting
func TestSignatureFirstFailureWins(t *testing.T) {
	sig := Signature{Req(0, String), Req(1, OpaqueHandleRef), Req(2, Number)}

	err := sig.Check(args(host.Int(1), host.Int(2), host.Str("x")))
	var ke *KindError
	if !errors.As(err, &ke) || ke.Index != 0 {
		t.Fatalf("Expected the first bad argument (0) to be reported, got %v", err)
	}

	err = sig.Check(args(host.Str("ok"), host.Int(42), host.Str("x")))
	if !errors.As(err, &ke) || ke.Index != 1 || ke.Expected != OpaqueHandleRef {
		t.Fatalf("Expected KindError(1, OpaqueHandleRef), got %v", err)
	}

	err = sig.Check(args(host.Int(1)))
	var ae *ArityError
	if !errors.As(err, &ae) {
		t.Fatalf("Expected arity to be checked before kinds, got %v", err)
	}

	if err := sig.Check(args(host.Str("ok"), Wrap(native.Context(1)), host.Int(3))); err != nil {
		t.Errorf("Expected valid call to pass, got %v", err)
	}
}

func TestSignatureOptional(t *testing.T) {
	sig := Signature{Req(0, OpaqueHandleRef), Opt(1, ArrayLike), Opt(2, Callback)}
	h := Wrap(native.Program(1))

	if sig.Required() != 1 {
		t.Errorf("Expected 1 required param, got %d", sig.Required())
	}
	if err := sig.Check(args(h)); err != nil {
		t.Errorf("Expected absent optionals to pass, got %v", err)
	}
	if err := sig.Check(args(h, host.Null, host.Null)); err != nil {
		t.Errorf("Expected null optionals to pass, got %v", err)
	}
	err := sig.Check(args(h, host.Arr(nil), host.Str("not a function")))
	var ke *KindError
	if !errors.As(err, &ke) || ke.Index != 2 || ke.Expected != Callback {
		t.Errorf("Expected KindError(2, Callback), got %v", err)
	}
}

func TestSignatureNullableAndFlag(t *testing.T) {
	sig := Signature{Req(0, Number), Nullable(1, ArrayLike), Req(2, Flag)}

	if sig.Required() != 3 {
		t.Errorf("Expected 3 required params, got %d", sig.Required())
	}
	var ae *ArityError
	if err := sig.Check(args(host.Int(1), host.Null)); !errors.As(err, &ae) || ae.Expected != 3 {
		t.Errorf("Expected ArityError(3), got %v", err)
	}
	if err := sig.Check(args(host.Int(1), host.Null, host.Bool(true))); err != nil {
		t.Errorf("Expected null in a nullable position to pass, got %v", err)
	}
	if err := sig.Check(args(host.Int(1), host.Arr(nil), host.Int(0))); err != nil {
		t.Errorf("Expected a number to pass as a flag, got %v", err)
	}
	err := sig.Check(args(host.Int(1), host.Null, host.Str("yes")))
	var ke *KindError
	if !errors.As(err, &ke) || ke.Index != 2 || ke.Expected != Flag {
		t.Errorf("Expected KindError(2, Flag), got %v", err)
	}
	if err := sig.Check(args(host.Int(1), host.Int(2), host.Bool(false))); !errors.As(err, &ke) || ke.Index != 1 {
		t.Errorf("Expected KindError(1, ArrayLike), got %v", err)
	}
}

func TestAnyKindRequiresPresence(t *testing.T) {
	sig := Signature{Req(0, Any)}
	for _, v := range []host.Value{host.Null, host.Str("x"), host.Arr(nil), Wrap(native.Kernel(0x40))} {
		if err := sig.Check(args(v)); err != nil {
			t.Errorf("Expected %s to pass, got %v", v.TypeName(), err)
		}
	}
	var ae *ArityError
	if err := sig.Check(args()); !errors.As(err, &ae) {
		t.Errorf("Expected ArityError, got %v", err)
	}
}
