package config

import (
	"fmt"
	"strings"

	"github.com/conn-castle/pki-deploy/internal/messages"
)

// Interpolate resolves %(key)s references in every value of m and returns a new mapping.
// "%%" renders a literal percent sign; any other '%' not starting a reference,
// an undefined key or a circular reference is an error.
func Interpolate(m Mapping) (Mapping, error) {
	r := &resolver{raw: m, done: make(Mapping, len(m)), active: map[string]bool{}}
	for key := range m {
		if _, err := r.resolve(key); err != nil {
			return nil, err
		}
	}
	return r.done, nil
}

type resolver struct {
	raw    Mapping
	done   Mapping
	active map[string]bool
}

func (r *resolver) resolve(key string) (string, error) {
	if value, ok := r.done[key]; ok {
		return value, nil
	}
	if r.active[key] {
		return "", fmt.Errorf(messages.ConfigReferenceCycleFmt, key, key)
	}
	r.active[key] = true
	defer delete(r.active, key)

	value := r.raw[key]
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] != '%' {
			b.WriteByte(value[i])
			continue
		}
		if i+1 < len(value) && value[i+1] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		if i+1 >= len(value) || value[i+1] != '(' {
			return "", fmt.Errorf(messages.ConfigStrayPercentFmt, key, value)
		}
		end := strings.Index(value[i:], ")s")
		if end < 0 {
			return "", fmt.Errorf(messages.ConfigUnterminatedRefFmt, key)
		}
		ref := strings.ToLower(value[i+2 : i+end])
		if _, ok := r.raw[ref]; !ok {
			return "", fmt.Errorf(messages.ConfigUnknownReferenceFmt, key, ref)
		}
		if r.active[ref] {
			return "", fmt.Errorf(messages.ConfigReferenceCycleFmt, key, ref)
		}
		expanded, err := r.resolve(ref)
		if err != nil {
			return "", err
		}
		b.WriteString(expanded)
		i += end + 1
	}
	r.done[key] = b.String()
	return r.done[key], nil
}
