package processor

import (
	"testing"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

func loginState(store *state.Store) (state.LoginStep, state.LoginStateType) {
	ls := store.Context().Account.LoginState
	var step state.LoginStep
	var st state.LoginStateType
	if ls.Step != nil {
		step = *ls.Step
	}
	if ls.State != nil {
		st = *ls.State
	}
	return step, st
}

func TestLoginVerifySuccessStoresSession(t *testing.T) {
	store := newTestStore(t)
	p := NewAccountProcessor(store, nil)

	p.handle(event.ActionLoginVerifySuccess{
		LoginVerifyResponse: event.LoginVerifyResponse{Token: "tok-123", Email: "user@example.com"},
	})

	ctx := store.Context()
	if ctx.Account.Account.Token == nil || *ctx.Account.Account.Token != "tok-123" {
		t.Fatalf("token = %v, want tok-123", ctx.Account.Account.Token)
	}
	if ctx.Account.Account.Email == nil || *ctx.Account.Account.Email != "user@example.com" {
		t.Fatalf("email = %v", ctx.Account.Account.Email)
	}
	step, st := loginState(store)
	if step != state.LoginStepLoginVerify || st != state.LoginSuccess {
		t.Fatalf("login state = %v/%v", step, st)
	}
}

func TestLoginVerifyErrorClearsSession(t *testing.T) {
	store := newTestStore(t)
	store.Update(func(c *state.AppStateContext) {
		c.Account.Account.Token = strPtr("stale")
		c.Account.Account.Email = strPtr("stale@example.com")
	})
	p := NewAccountProcessor(store, nil)

	p.handle(event.ActionLoginVerifyError{Error: "code expired"})

	ctx := store.Context()
	if ctx.Account.Account.Token != nil || ctx.Account.Account.Email != nil {
		t.Fatalf("session not cleared: %+v", ctx.Account.Account)
	}
	_, st := loginState(store)
	if st != state.LoginError {
		t.Fatalf("login state = %v, want error", st)
	}
	if len(ctx.Errors) == 0 || ctx.Errors[0].Message != "code expired" {
		t.Fatalf("errors = %+v", ctx.Errors)
	}
}

func TestLoginErrorSurfacesMessage(t *testing.T) {
	store := newTestStore(t)
	p := NewAccountProcessor(store, nil)

	p.handle(event.ActionLoginError{Error: "rate limited"})
	step, st := loginState(store)
	if step != state.LoginStepLogin || st != state.LoginError {
		t.Fatalf("login state = %v/%v", step, st)
	}
	if errs := store.Context().Errors; len(errs) == 0 || errs[0].Message != "rate limited" {
		t.Fatalf("errors = %+v", errs)
	}
}

func TestLoginSuccessMovesToSuccessState(t *testing.T) {
	store := newTestStore(t)
	p := NewAccountProcessor(store, nil)

	p.handle(event.ActionLoginSuccess{Email: "sent"})
	step, st := loginState(store)
	if step != state.LoginStepLogin || st != state.LoginSuccess {
		t.Fatalf("login state = %v/%v", step, st)
	}
}
