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
	"encoding/json"
	"fmt"
	gotime "time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yorkie-team/redline/internal/replay"
	"github.com/yorkie-team/redline/pkg/document"
	"github.com/yorkie-team/redline/pkg/revision"
)

// revisionView is the printed form of a record.
type revisionView struct {
	ID        string `json:"id" yaml:"id"`
	Kind      string `json:"kind" yaml:"kind"`
	Status    string `json:"status" yaml:"status"`
	Author    string `json:"author" yaml:"author"`
	Content   string `json:"content" yaml:"content"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
}

func toRevisionViews(records []*revision.Record) []revisionView {
	views := make([]revisionView, 0, len(records))
	for _, record := range records {
		views = append(views, revisionView{
			ID:        record.ID.String(),
			Kind:      string(record.Kind),
			Status:    string(record.Status),
			Author:    record.Author.ID,
			Content:   record.Content,
			CreatedAt: record.CreatedAt.UTC().Format(gotime.RFC3339),
		})
	}
	return views
}

// sessionView is the printed form of a replayed session.
type sessionView struct {
	Steps     []replay.Outcome `json:"steps" yaml:"steps"`
	XML       string           `json:"xml" yaml:"xml"`
	Text      string           `json:"text" yaml:"text"`
	Revisions []revisionView   `json:"revisions" yaml:"revisions"`
}

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}

func renderRevisions(revisions []revisionView) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{
		"ID",
		"KIND",
		"STATUS",
		"AUTHOR",
		"CONTENT",
		"CREATED AT",
	})
	for _, view := range revisions {
		tw.AppendRow(table.Row{
			view.ID,
			view.Kind,
			view.Status,
			view.Author,
			fmt.Sprintf("%q", view.Content),
			view.CreatedAt,
		})
	}
	return tw.Render()
}

func printRevisions(cmd *cobra.Command, output string, records []*revision.Record) error {
	views := toRevisionViews(records)
	if output == "" {
		cmd.Printf("%s\n", renderRevisions(views))
		return nil
	}

	return printStructured(cmd, output, views)
}

func printSession(cmd *cobra.Command, output string, doc *document.Document, outcomes []replay.Outcome) error {
	session := sessionView{
		Steps:     outcomes,
		XML:       doc.ToXML(),
		Text:      doc.Text(),
		Revisions: toRevisionViews(doc.Ledger().All()),
	}
	if output != "" {
		return printStructured(cmd, output, session)
	}

	tw := newTableWriter()
	tw.AppendHeader(table.Row{"STEP", "OP", "STATUS", "CREATED", "RESOLVED"})
	for _, outcome := range outcomes {
		tw.AppendRow(table.Row{
			outcome.Step,
			outcome.Op,
			outcome.Status,
			len(outcome.Created),
			len(outcome.Resolved),
		})
	}
	cmd.Printf("%s\n\n", tw.Render())
	cmd.Printf("XML: %s\n", session.XML)
	cmd.Printf("Text: %q\n\n", session.Text)
	cmd.Printf("%s\n", renderRevisions(session.Revisions))

	return nil
}

func printStructured(cmd *cobra.Command, output string, v interface{}) error {
	switch output {
	case "json":
		jsonOutput, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		cmd.Println(string(jsonOutput))
	case "yaml":
		yamlOutput, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal YAML: %w", err)
		}
		cmd.Println(string(yamlOutput))
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}

	return nil
}
