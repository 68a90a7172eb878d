package state

// LoginStep tracks which stage of the email code flow the user is in.
type LoginStep string

const (
	LoginStepLogin       LoginStep = "Login"
	LoginStepLoginVerify LoginStep = "LoginVerify"
)

// LoginStateType is the outcome of the last login request.
type LoginStateType string

const (
	LoginIdle    LoginStateType = "Idle"
	LoginPending LoginStateType = "Pending"
	LoginSuccess LoginStateType = "Success"
	LoginError   LoginStateType = "Error"
)

// LoginState is volatile and reset on load.
type LoginState struct {
	Step  *LoginStep      `json:"step"`
	State *LoginStateType `json:"state"`
}

// Account holds the signed-in user, if any.
type Account struct {
	Email *string `json:"email"`
	Token *string `json:"token"`
}

type AccountContext struct {
	Account    Account    `json:"account"`
	LoginState LoginState `json:"login_state"`
}

func (c AccountContext) clone() AccountContext {
	out := c
	if c.Account.Email != nil {
		e := *c.Account.Email
		out.Account.Email = &e
	}
	if c.Account.Token != nil {
		t := *c.Account.Token
		out.Account.Token = &t
	}
	if c.LoginState.Step != nil {
		s := *c.LoginState.Step
		out.LoginState.Step = &s
	}
	if c.LoginState.State != nil {
		s := *c.LoginState.State
		out.LoginState.State = &s
	}
	return out
}
