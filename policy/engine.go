// Package policy evaluates chat access decisions with OPA.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision values returned by the access policy.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.chat_access.decision"),
		rego.Module("chat_access.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// AccessInput is the evaluation input for a chat access check.
type AccessInput struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	OwnerID string `json:"owner_id"`
}

// Evaluate checks whether the user may operate on a chat. Returns the
// decision string; anything but "allow" denies access.
func (e *Engine) Evaluate(ctx context.Context, input AccessInput) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionDeny, nil
	}
	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionDeny, nil
}

// DefaultPolicy is the default access policy: a chat is visible to its
// owner and to admins, nobody else.
const DefaultPolicy = `
package chat_access

import rego.v1

default decision := "deny"

decision := "allow" if {
	input.user_id == input.owner_id
}

decision := "allow" if {
	input.role == "admin"
}
`
