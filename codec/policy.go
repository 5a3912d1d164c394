// notebook/codec/policy.go
package codec

// Policy answers the questions Open has to ask the user. Calls block until
// the user decides.
type Policy interface {
	// ConfirmOpenNewerMinorVersion asks whether to open a file written by a
	// newer minor version, accepting that unknown data is skipped.
	ConfirmOpenNewerMinorVersion() bool

	// PromptPassword is called until the password matches or the user
	// cancels.
	PromptPassword() (password []byte, cancelled bool)

	// WarnWrongPassword is called after each rejected password.
	WarnWrongPassword()
}

// DenyPolicy refuses newer minor versions and cancels every password prompt.
type DenyPolicy struct{}

func (DenyPolicy) ConfirmOpenNewerMinorVersion() bool { return false }
func (DenyPolicy) PromptPassword() ([]byte, bool) { return nil, true }
func (DenyPolicy) WarnWrongPassword() {}

// StaticPolicy answers from fixed values. Passwords are offered in order;
// once they run out the prompt is cancelled. Prompts counts the passwords
// handed out.
type StaticPolicy struct {
	Passwords        [][]byte
	AcceptNewerMinor bool

	Confirmations int
	Prompts       int
	Warnings      int
}

func (p *StaticPolicy) ConfirmOpenNewerMinorVersion() bool {
	p.Confirmations++
	return p.AcceptNewerMinor
}

func (p *StaticPolicy) PromptPassword() ([]byte, bool) {
	if p.Prompts >= len(p.Passwords) {
		return nil, true
	}
	pw := p.Passwords[p.Prompts]
	p.Prompts++
	return pw, false
}

func (p *StaticPolicy) WarnWrongPassword() {
	p.Warnings++
}

// PolicyFuncs adapts plain functions to Policy. Nil fields behave like
// DenyPolicy.
type PolicyFuncs struct {
	Confirm func() bool
	Prompt  func() ([]byte, bool)
	Warn    func()
}

func (p PolicyFuncs) ConfirmOpenNewerMinorVersion() bool {
	if p.Confirm == nil {
		return false
	}
	return p.Confirm()
}

func (p PolicyFuncs) PromptPassword() ([]byte, bool) {
	if p.Prompt == nil {
		return nil, true
	}
	return p.Prompt()
}

func (p PolicyFuncs) WarnWrongPassword() {
	if p.Warn != nil {
		p.Warn()
	}
}
