package statementvault

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/statementvault/vault-go/internal/obfuscate"
)

// PresentedField is one sensitive value prepared for display. Display is
// the plaintext to render; Shadow is the session-obfuscated form the host
// keeps alongside the rendered widget and hands back for verification.
type PresentedField struct {
	Name    string
	Display string
	Shadow  string
}

// ObfuscatedView is a statement prepared for rendering.
type ObfuscatedView struct {
	Type   PayloadType
	Fields []PresentedField
}

// Field returns the named field, or nil.
func (o *ObfuscatedView) Field(name string) *PresentedField {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			return &o.Fields[i]
		}
	}
	return nil
}

// RenderingDefense guards statements handed out for display. It keeps the
// last presented statement, shadows its sensitive fields under a rotating
// session key, counts anomalous access attempts, and clears everything
// when the host surface is backgrounded or the attempt threshold trips.
type RenderingDefense struct {
	session   *obfuscate.Session
	threshold int
	logger    zerolog.Logger

	mu        sync.Mutex
	statement *Statement
	attempts  int
}

func newRenderingDefense(session *obfuscate.Session, threshold int, logger zerolog.Logger) *RenderingDefense {
	return &RenderingDefense{
		session:   session,
		threshold: threshold,
		logger:    logger,
	}
}

// Present caches the statement and returns its obfuscated view. Each
// sensitive field is paired with a shadow keyed to the current session.
func (d *RenderingDefense) Present(statement *Statement) (*ObfuscatedView, error) {
	if statement == nil {
		return nil, &ValidationError{Missing: []string{"statement"}}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.statement = statement
	d.attempts = 0

	view := &ObfuscatedView{Type: statement.Type}
	for _, f := range statement.sensitiveFields() {
		view.Fields = append(view.Fields, PresentedField{
			Name:    f.name,
			Display: f.value,
			Shadow:  d.session.Apply(f.value),
		})
	}
	return view, nil
}

// VerifyField checks a rendered value against its shadow. An empty or
// mismatched shadow means the rendered value was altered after
// presentation; that is recorded as an access attempt and the field is
// reported unverified.
func (d *RenderingDefense) VerifyField(name, display, shadow string) bool {
	if shadow == "" {
		d.RaiseAccessSignal("missing shadow for " + name)
		return false
	}
	revealed, err := d.session.Reveal(shadow)
	if err != nil || revealed != display {
		d.RaiseAccessSignal("shadow mismatch for " + name)
		return false
	}
	return true
}

// RaiseAccessSignal records one anomalous access attempt. Crossing the
// threshold clears the cached statement and rotates the session key,
// invalidating every shadow issued so far.
func (d *RenderingDefense) RaiseAccessSignal(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.attempts++
	d.logger.Warn().Str("reason", reason).Int("attempts", d.attempts).Msg("access signal raised")

	if d.attempts > d.threshold {
		d.clearAndRotateLocked()
	}
}

// NotifyBackgrounded clears presentation state when the host surface
// leaves the foreground.
func (d *RenderingDefense) NotifyBackgrounded() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearAndRotateLocked()
}

// Teardown clears the cached statement and wipes the session key. Called
// when the vault closes; the defense layer is unusable afterwards except
// that shadows pass through unobfuscated. Unlike clearAndRotateLocked it
// wipes instead of rotating: the vault is gone, and leaving a fresh live
// key in memory would outlast every shadow it could ever verify.
func (d *RenderingDefense) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statement = nil
	d.attempts = 0
	d.session.Clear()
}

func (d *RenderingDefense) clearAndRotateLocked() {
	d.statement = nil
	d.attempts = 0
	if err := d.session.Rotate(); err != nil {
		// Rotation can only fail if entropy is unavailable; clearing
		// still invalidates outstanding shadows.
		d.logger.Error().Err(err).Msg("session rotation failed, clearing instead")
		d.session.Clear()
	}
}

// HasCachedStatement reports whether a presented statement is cached.
func (d *RenderingDefense) HasCachedStatement() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statement != nil
}

// AccessAttempts returns the current access-attempt count.
func (d *RenderingDefense) AccessAttempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

// SessionFingerprint identifies the current obfuscation session. It
// changes on rotation and is safe to log.
func (d *RenderingDefense) SessionFingerprint() string {
	return d.session.Fingerprint()
}
