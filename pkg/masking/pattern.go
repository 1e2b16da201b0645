package masking

import "regexp"

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// builtinPatterns returns the fixed set of secret/PII patterns applied to
// every piece of fetched text before it reaches an extraction prompt or a
// log line. There is no per-source configuration: every fetch method feeds
// the same redaction pass.
func builtinPatterns() []*CompiledPattern {
	specs := []struct {
		name        string
		pattern     string
		replacement string
		description string
	}{
		{
			name:        "api_key",
			pattern:     `(?i)(?:api[_-]?key|apikey)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-]{20,})["']?`,
			replacement: `"api_key": "[MASKED_API_KEY]"`,
			description: "API keys",
		},
		{
			name:        "password",
			pattern:     `(?i)(?:password|pwd|pass)["']?\s*[:=]\s*["']?([^"'\s\n]{6,})["']?`,
			replacement: `"password": "[MASKED_PASSWORD]"`,
			description: "Passwords",
		},
		{
			name:        "certificate",
			pattern:     `(?s)-----BEGIN [A-Z ]+-----.*?-----END [A-Z ]+-----`,
			replacement: `[MASKED_CERTIFICATE]`,
			description: "PEM certificates and keys",
		},
		{
			name:        "token",
			pattern:     `(?i)(?:token|bearer|jwt)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-\.]{20,})["']?`,
			replacement: `"token": "[MASKED_TOKEN]"`,
			description: "Access tokens",
		},
		{
			name:        "email",
			pattern:     `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9]+(?:[.-][A-Za-z0-9]+)*\.[A-Za-z]{2,63}\b`,
			replacement: `[MASKED_EMAIL]`,
			description: "Email addresses",
		},
		{
			name:        "ssh_key",
			pattern:     `ssh-(?:rsa|dss|ed25519|ecdsa)\s+[A-Za-z0-9+/=]+`,
			replacement: `[MASKED_SSH_KEY]`,
			description: "SSH public keys",
		},
		{
			name:        "private_key",
			pattern:     `(?i)(?:private[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-\.]{20,})["']?`,
			replacement: `"private_key": "[MASKED_PRIVATE_KEY]"`,
			description: "Private key fields",
		},
		{
			name:        "secret_key",
			pattern:     `(?i)(?:secret[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9_\-\.]{20,})["']?`,
			replacement: `"secret_key": "[MASKED_SECRET_KEY]"`,
			description: "Secret key fields",
		},
		{
			name:        "aws_access_key",
			pattern:     `(?i)(?:aws[_-]?access[_-]?key[_-]?id)["']?\s*[:=]\s*["']?(AKIA[A-Z0-9]{16})["']?`,
			replacement: `"aws_access_key_id": "[MASKED_AWS_KEY]"`,
			description: "AWS access key IDs",
		},
		{
			name:        "aws_secret_key",
			pattern:     `(?i)(?:aws[_-]?secret[_-]?access[_-]?key)["']?\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`,
			replacement: `"aws_secret_access_key": "[MASKED_AWS_SECRET]"`,
			description: "AWS secret access keys",
		},
		{
			name:        "github_token",
			pattern:     `(?i)(?:github[_-]?token|gh[ps]_[A-Za-z0-9_]{36,255})`,
			replacement: `[MASKED_GITHUB_TOKEN]`,
			description: "GitHub tokens",
		},
		{
			name:        "slack_token",
			pattern:     `(?i)xox[baprs]-[A-Za-z0-9-]{10,72}`,
			replacement: `[MASKED_SLACK_TOKEN]`,
			description: "Slack tokens",
		},
		{
			name:        "base64_secret",
			pattern:     `\b([A-Za-z0-9+/]{24,}={0,2})\b`,
			replacement: `[MASKED_BASE64_VALUE]`,
			description: "Long base64-encoded values",
		},
	}

	patterns := make([]*CompiledPattern, 0, len(specs))
	for _, spec := range specs {
		patterns = append(patterns, &CompiledPattern{
			Name:        spec.name,
			Regex:       regexp.MustCompile(spec.pattern),
			Replacement: spec.replacement,
			Description: spec.description,
		})
	}
	return patterns
}
