package isolation

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_policy.yaml
var defaultPolicyYAML []byte

var (
	defaultPolicyOnce sync.Once
	defaultPolicy     *Policy
	defaultPolicyErr  error
)

// DefaultPolicy returns the policy shipped with the module.
func DefaultPolicy() (*Policy, error) {
	defaultPolicyOnce.Do(func() {
		defaultPolicy, defaultPolicyErr = Load(bytes.NewReader(defaultPolicyYAML))
	})
	return defaultPolicy, defaultPolicyErr
}

func Load(r io.Reader) (*Policy, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: reader is nil", ErrInvalidPolicy)
	}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidPolicy)
		}
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidPolicy, err)
	}
	return NewPolicy(doc)
}

func LoadFile(path string) (*Policy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("isolation: open policy %s: %w", path, err)
	}
	defer file.Close()

	policy, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return policy, nil
}

// WriteManifest writes the policy as YAML.
func (p *Policy) WriteManifest(w io.Writer) error {
	if p == nil {
		return fmt.Errorf("%w: policy is nil", ErrInvalidPolicy)
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(p.Manifest()); err != nil {
		return fmt.Errorf("isolation: encode manifest: %w", err)
	}
	return encoder.Close()
}
