// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import "github.com/toeirei/clientbook/internal/logging"

// dbLogf emits a debug trace. It is filtered by the logging level, so the
// verbose flag is what turns it on.
func dbLogf(format string, v ...any) {
	logging.Debugf(format, v...)
}
