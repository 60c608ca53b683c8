package errors

import (
	"errors"
	"testing"
)

func TestDecodeErrorString(t *testing.T) {
	e := New(ErrCodeShortPayload, "not enough bytes")
	if e.Error() != "SHORT_PAYLOAD: not enough bytes" {
		t.Errorf("unexpected message: %s", e.Error())
	}

	cause := errors.New("boom")
	e.WithCause(cause)
	if e.Error() != "SHORT_PAYLOAD: not enough bytes: boom" {
		t.Errorf("unexpected message with cause: %s", e.Error())
	}
}

func TestDecodeErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	e := New(ErrCodeCustom, "wrapped").WithCause(cause)
	if errors.Unwrap(e) != cause {
		t.Error("expected Unwrap to return the attached cause")
	}
}

func TestDecodeErrorIsMatchesByCode(t *testing.T) {
	a := New(ErrCodeShortPayload, "a")
	b := New(ErrCodeShortPayload, "b")
	c := New(ErrCodeOutOfRange, "c")

	if !errors.Is(a, b) {
		t.Error("expected errors with the same code to match via errors.Is")
	}
	if errors.Is(a, c) {
		t.Error("expected errors with different codes not to match")
	}
}

func TestDecodeErrorIsIgnoresNonDecodeError(t *testing.T) {
	a := New(ErrCodeShortPayload, "a")
	if errors.Is(a, errors.New("plain")) {
		t.Error("expected a plain error never to match a DecodeError via Is")
	}
}

func TestShortPayload(t *testing.T) {
	e := ShortPayload("spl_token.transfer", 4, 9)
	if e.Code != ErrCodeShortPayload {
		t.Errorf("expected code %s, got %s", ErrCodeShortPayload, e.Code)
	}
	want := "spl_token.transfer: need at least 9 bytes, got 4"
	if e.Message != want {
		t.Errorf("expected message %q, got %q", want, e.Message)
	}
}

func TestOutOfRange(t *testing.T) {
	e := OutOfRange("core.ReadU64LE", 40, 32)
	if e.Code != ErrCodeOutOfRange {
		t.Errorf("expected code %s, got %s", ErrCodeOutOfRange, e.Code)
	}
}

func TestInvalidUTF8WrapsCause(t *testing.T) {
	cause := errors.New("invalid byte sequence")
	e := InvalidUTF8("name", cause)
	if e.Code != ErrCodeInvalidUTF8 {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidUTF8, e.Code)
	}
	if e.Cause != cause {
		t.Error("expected cause to be preserved")
	}
}

func TestMissingBalance(t *testing.T) {
	e := MissingBalance("in", 3)
	if e.Code != ErrCodeMissingBalance {
		t.Errorf("expected code %s, got %s", ErrCodeMissingBalance, e.Code)
	}
}

func TestCustom(t *testing.T) {
	e := Custom("something went wrong")
	if e.Code != ErrCodeCustom || e.Message != "something went wrong" {
		t.Errorf("unexpected custom error: %+v", e)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("expected Wrap(nil, ...) to return nil")
	}
}

func TestWrapPreservesChain(t *testing.T) {
	cause := ErrMissingMeta
	wrapped := Wrap(cause, "decoding transaction")
	if !Is(wrapped, cause) {
		t.Error("expected the wrapped error to chain to the original via errors.Is")
	}
}

func TestPackageIsAndAs(t *testing.T) {
	e := New(ErrCodeMissingStackHeight, "missing height")
	wrapped := Wrap(e, "context")

	if !Is(wrapped, e) {
		t.Error("expected Is to find the DecodeError through fmt.Errorf's %w chain")
	}

	var target *DecodeError
	if !As(wrapped, &target) {
		t.Fatal("expected As to find the DecodeError through the chain")
	}
	if target.Code != ErrCodeMissingStackHeight {
		t.Errorf("expected code %s, got %s", ErrCodeMissingStackHeight, target.Code)
	}
}

func TestPredefinedErrorsHaveStableCodes(t *testing.T) {
	cases := []struct {
		err  *DecodeError
		code string
	}{
		{ErrMissingTransaction, ErrCodeMissingTransaction},
		{ErrMissingMessage, ErrCodeMissingMessage},
		{ErrMissingMeta, ErrCodeMissingMeta},
		{ErrMissingStackHeight, ErrCodeMissingStackHeight},
	}
	for _, c := range cases {
		if c.err.Code != c.code {
			t.Errorf("expected code %s, got %s", c.code, c.err.Code)
		}
	}
}
