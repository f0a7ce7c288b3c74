package domain

import "errors"

// ErrWorkflowNotFound is returned when a workflow ID cannot be found in a store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrNodeNotFound is returned when an operation references a node ID that is
// not part of the workflow.
var ErrNodeNotFound = errors.New("node not found")

// ErrConnectionNotFound is returned when a connection ID is not part of the
// workflow.
var ErrConnectionNotFound = errors.New("connection not found")

// ErrUnknownPort is returned when a connection endpoint names a port that the
// node does not declare.
var ErrUnknownPort = errors.New("unknown port")
