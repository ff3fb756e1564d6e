// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

// Observable interface for all components that need observability
type Observable interface {
	// GetComponentName returns the component identifier
	GetComponentName() string
}

// Debug returns the debug observer of o, or nil when debug output is off
func Debug(o *StandardObserver) *DebugObserver {
	if o == nil {
		return nil
	}
	return o.DebugObserver
}
