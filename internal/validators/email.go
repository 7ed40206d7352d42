package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

// Resolver is the part of *net.Resolver the domain check needs.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// EmailDomain accepts an address when its domain has an MX record or,
// failing that, resolves to an address.
type EmailDomain struct {
	resolver Resolver
	timeout  time.Duration
}

func NewEmailDomain(r Resolver, timeout time.Duration) *EmailDomain {
	if r == nil {
		r = net.DefaultResolver
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &EmailDomain{resolver: r, timeout: timeout}
}

func (v *EmailDomain) Valid(ctx context.Context, email string) bool {
	domain, ok := emailDomain(email)
	if !ok {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if mx, err := v.resolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := v.resolver.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}

func emailDomain(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))

	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}

	domain := strings.TrimSuffix(email[at+1:], ".")
	if !strings.Contains(domain, ".") {
		return "", false
	}
	return domain, true
}
