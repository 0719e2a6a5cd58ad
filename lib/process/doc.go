// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers shared by the host
// and the agent module:
//
//   - [Fatal] reports an error to stderr and exits, for failures where
//     the structured logger may not be initialized.
//   - [BesideExecutable] resolves a file name against the directory of
//     the running executable, which is where config.ini, layout.yaml and
//     the agent module live.
package process
