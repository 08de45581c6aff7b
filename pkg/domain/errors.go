package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter is returned when a declared parameter has no argument,
	// no resolvable dependency and no default value.
	ErrMissingParameter = errors.New("missing required parameter")

	// ErrAccessDenied is returned when a bound method is absent or not publicly invocable.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidArgument is returned when an entity id or attribute name is blank.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownCallable is returned when a callable reference cannot be resolved to a function.
	ErrUnknownCallable = errors.New("unknown callable")

	// ErrArgumentType is returned when a bound value cannot be passed as the declared parameter type.
	ErrArgumentType = errors.New("argument type mismatch")

	// ErrInvalidTransition is returned when a transition is not defined or not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrGuardRejected is returned when a guard denies a transition.
	ErrGuardRejected = errors.New("transition rejected by guard")

	// ErrInvalidRecord is returned when a transition record breaks its invariants.
	ErrInvalidRecord = errors.New("invalid transition record")
)

// MissingParameterError names the parameter that could not be bound.
type MissingParameterError struct {
	Parameter string
	Position  int
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: $%s (position %d)", ErrMissingParameter, e.Parameter, e.Position)
}

func (e *MissingParameterError) Is(target error) bool { return target == ErrMissingParameter }

// AccessReason classifies why a bound method cannot be invoked.
type AccessReason string

const (
	// AccessNoSuchMethod means the method could not be found on the target.
	AccessNoSuchMethod AccessReason = "no_such_method"
	AccessPrivate      AccessReason = "private"
	AccessProtected    AccessReason = "protected"
)

// AccessDeniedError describes a rejected bound-method invocation.
type AccessDeniedError struct {
	Target string
	Method string
	Reason AccessReason
}

func (e *AccessDeniedError) Error() string {
	switch e.Reason {
	case AccessNoSuchMethod:
		return fmt.Sprintf("%s: reflection construction failed for method %s::%s", ErrAccessDenied, e.Target, e.Method)
	default:
		return fmt.Sprintf("%s: method %s::%s is %s", ErrAccessDenied, e.Target, e.Method, e.Reason)
	}
}

func (e *AccessDeniedError) Is(target error) bool { return target == ErrAccessDenied }

// InvalidArgumentError names the blank argument of a history query.
type InvalidArgumentError struct {
	Field string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s must not be empty", ErrInvalidArgument, e.Field)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// GuardRejectedError identifies the guard that denied a transition.
type GuardRejectedError struct {
	Transition string
	Guard      string
}

func (e *GuardRejectedError) Error() string {
	return fmt.Sprintf("%s: %q denied by %s", ErrGuardRejected, e.Transition, e.Guard)
}

func (e *GuardRejectedError) Is(target error) bool { return target == ErrGuardRejected }

// AppendError reports a transition whose side effects ran but whose record
// could not be written to the event log.
type AppendError struct {
	Record TransitionRecord
	Err    error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("transition %s -> %s applied but not recorded: %v", DescribeState(e.Record.From), e.Record.To, e.Err)
}

func (e *AppendError) Unwrap() error { return e.Err }

// DescribeState returns the state, or NoState when it is absent.
func DescribeState(from *string) string {
	if from == nil {
		return NoState
	}
	return *from
}

// NoState is the textual placeholder for an absent from-state.
const NoState = "∅"
