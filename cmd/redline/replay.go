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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yorkie-team/redline/internal/logging"
	"github.com/yorkie-team/redline/internal/replay"
	"github.com/yorkie-team/redline/pkg/document"
)

var (
	replayDocPath    string
	replaySavePath   string
	replayConfigPath string
	replayOutput     string
)

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay [script file]",
		Short: "Replay an editing script and print the document with its revisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("script is required")
			}
			if err := validateOutput(replayOutput); err != nil {
				return err
			}

			script, err := replay.Load(args[0])
			if err != nil {
				return err
			}

			doc, err := newDocument(replayConfigPath)
			if err != nil {
				return err
			}
			if replayDocPath != "" {
				if err := loadDocument(doc, replayDocPath); err != nil {
					return err
				}
			}

			outcomes, err := script.Run(doc)
			if err != nil {
				return err
			}

			if replaySavePath != "" {
				bytes, err := doc.Save()
				if err != nil {
					return err
				}
				if err := os.WriteFile(filepath.Clean(replaySavePath), bytes, 0600); err != nil {
					return fmt.Errorf("write document: %w", err)
				}
			}

			return printSession(cmd, replayOutput, doc, outcomes)
		},
	}
}

// newDocument creates a document with the config of the given path, or the
// default config when the path is empty.
func newDocument(configPath string) (*document.Document, error) {
	conf := document.NewConfig()
	if configPath != "" {
		var err error
		if conf, err = document.NewConfigFromFile(configPath); err != nil {
			return nil, err
		}
	}

	if logLevel == "" {
		if err := logging.SetLogLevel(conf.Logging.Level); err != nil {
			return nil, err
		}
	}

	return document.New(conf)
}

// loadDocument loads the saved document of the given path into doc.
func loadDocument(doc *document.Document, path string) error {
	bytes, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	return doc.Load(bytes)
}

func init() {
	cmd := newReplayCmd()
	cmd.Flags().StringVar(
		&replayDocPath,
		"doc",
		"",
		"Saved document to replay the script on",
	)
	cmd.Flags().StringVar(
		&replaySavePath,
		"save",
		"",
		"File to save the resulting document to",
	)
	cmd.Flags().StringVarP(
		&replayConfigPath,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&replayOutput,
		"output",
		"o",
		"",
		"One of 'yaml' or 'json'.",
	)

	rootCmd.AddCommand(cmd)
}
