package processor

import (
	"context"

	"go.qspeak.app/qspeak/api"
	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/state"
)

// AccountProcessor runs the two-step email/code login flow against the
// accounts API.
type AccountProcessor struct {
	store    *state.Store
	bus      *Processor
	accounts *api.Accounts
}

func NewAccountProcessor(store *state.Store, bus *Processor, accounts *api.Accounts) *AccountProcessor {
	return &AccountProcessor{store: store, bus: bus, accounts: accounts}
}

func (p *AccountProcessor) Register() {
	p.bus.RegisterEventListener("account", p.handle)
}

func (p *AccountProcessor) handle(e event.Event) error {
	switch ev := e.(type) {
	case event.ActionLogin:
		p.setLoginState(state.LoginStepLogin, state.LoginPending)
		go func() {
			resp, err := p.accounts.Login(context.Background(), ev.Email)
			if err != nil {
				p.bus.Dispatch(event.ActionLoginError{Error: err.Error()})
				return
			}
			p.bus.Dispatch(event.ActionLoginSuccess{Email: resp.Message})
		}()

	case event.ActionLoginSuccess:
		p.setLoginState(state.LoginStepLogin, state.LoginSuccess)

	case event.ActionLoginError:
		p.setLoginState(state.LoginStepLogin, state.LoginError)
		p.store.Update(func(c *state.AppStateContext) {
			c.Errors = append(c.Errors, state.NewAppError(ev.Error))
		})

	case event.ActionLoginVerify:
		p.setLoginState(state.LoginStepLoginVerify, state.LoginPending)
		go func() {
			resp, err := p.accounts.LoginVerify(context.Background(), ev.Email, ev.Code)
			if err != nil {
				p.bus.Dispatch(event.ActionLoginVerifyError{Error: err.Error()})
				return
			}
			p.bus.Dispatch(event.ActionLoginVerifySuccess{
				LoginVerifyResponse: event.LoginVerifyResponse{Token: resp.Token, Email: resp.Email},
			})
		}()

	case event.ActionLoginVerifySuccess:
		p.store.Update(func(c *state.AppStateContext) {
			step := state.LoginStepLoginVerify
			st := state.LoginSuccess
			c.Account.LoginState = state.LoginState{Step: &step, State: &st}
			c.Account.Account.Token = &ev.Token
			c.Account.Account.Email = &ev.Email
		})

	case event.ActionLoginVerifyError:
		p.store.Update(func(c *state.AppStateContext) {
			step := state.LoginStepLoginVerify
			st := state.LoginError
			c.Account.LoginState = state.LoginState{Step: &step, State: &st}
			c.Errors = append(c.Errors, state.NewAppError(ev.Error))
			c.Account.Account.Token = nil
			c.Account.Account.Email = nil
		})
	}
	return nil
}

func (p *AccountProcessor) setLoginState(step state.LoginStep, st state.LoginStateType) {
	p.store.Update(func(c *state.AppStateContext) {
		c.Account.LoginState = state.LoginState{Step: &step, State: &st}
	})
}
