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

	"github.com/spf13/cobra"

	"github.com/yorkie-team/redline/pkg/ledger"
	"github.com/yorkie-team/redline/pkg/revision"
)

var (
	authorID         string
	kind             string
	pendingOnly      bool
	revisionsOutput  string
	revisionsDocConf string
)

func newRevisionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revisions [document file]",
		Short: "List the revisions of a saved document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("document is required")
			}
			if err := validateOutput(revisionsOutput); err != nil {
				return err
			}

			filter := ledger.Filter{AuthorID: authorID}
			if kind != "" {
				k, err := revision.ParseKind(kind)
				if err != nil {
					return err
				}
				filter.Kind = k
			}
			if pendingOnly {
				filter.Status = revision.Pending
			}

			doc, err := newDocument(revisionsDocConf)
			if err != nil {
				return err
			}
			if err := loadDocument(doc, args[0]); err != nil {
				return err
			}

			return printRevisions(cmd, revisionsOutput, doc.Ledger().List(filter))
		},
	}
}

func init() {
	cmd := newRevisionsCmd()
	cmd.Flags().StringVar(
		&authorID,
		"author",
		"",
		"List only the revisions of the given author",
	)
	cmd.Flags().StringVar(
		&kind,
		"kind",
		"",
		"List only the revisions of the given kind: insertion or deletion",
	)
	cmd.Flags().BoolVar(
		&pendingOnly,
		"pending",
		false,
		"List only the pending revisions",
	)
	cmd.Flags().StringVarP(
		&revisionsDocConf,
		"config",
		"c",
		"",
		"Config path",
	)
	cmd.Flags().StringVarP(
		&revisionsOutput,
		"output",
		"o",
		"",
		"One of 'yaml' or 'json'.",
	)

	rootCmd.AddCommand(cmd)
}
