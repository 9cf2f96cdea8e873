/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main is the entry point of the redline CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/yorkie-team/redline/internal/logging"
	"github.com/yorkie-team/redline/pkg/errors"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:          "redline",
	Short:        "Track changes for structured rich-text documents",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logLevel == "" {
			return nil
		}
		return logging.SetLogLevel(logLevel)
	},
}

// Run executes CLI. It returns 2 when the failure was caused by the input
// given by the user, and 1 otherwise.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		if errors.StatusOf(err).IsClientError() {
			return 2
		}
		return 1
	}

	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		"",
		"Log level of the engine: debug, info, warn or error",
	)
}
