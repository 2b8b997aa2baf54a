package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/terrapatch/internal/ctxlog"
)

const (
	maxSummaryLines = 5
	maxPRLinks      = 10
)

// PRCreated announces a successfully opened pull request, with repository
// details and up to five applied changes.
func (c *Client) PRCreated(ctx context.Context, repoName, prURL string, filesModified int, summaries []string, runURL string) {
	blocks := []Block{
		section(":white_check_mark: *Terraform Infrastructure Update* - Completed Successfully"),
	}

	details := fmt.Sprintf("*Repository:* `%s`\n", repoName)
	if filesModified > 0 {
		details += fmt.Sprintf("*Files Modified:* %d\n", filesModified)
	}
	details += fmt.Sprintf("*Pull Request:* <%s|View PR>\n", prURL)
	if runURL != "" {
		details += fmt.Sprintf("*Workflow Run:* <%s|View Execution>\n", runURL)
	}
	blocks = append(blocks, section(details))

	if len(summaries) > 0 {
		var b strings.Builder
		b.WriteString("*Changes Applied:*\n")
		for i, change := range summaries {
			if i == maxSummaryLines {
				fmt.Fprintf(&b, "• ... and %d more changes\n", len(summaries)-maxSummaryLines)
				break
			}
			fmt.Fprintf(&b, "• %s\n", change)
		}
		blocks = append(blocks, section(b.String()))
	}
	blocks = append(blocks, divider())

	c.deliver(ctx, Message{
		Text:   fmt.Sprintf("🔧 Terraform PR created for %s: %s", repoName, prURL),
		Blocks: blocks,
	})
}

// RepoFailure reports a failed repository with debugging pointers.
func (c *Client) RepoFailure(ctx context.Context, repoName, errMessage, runURL string) {
	details := fmt.Sprintf("*Repository:* `%s`\n*Error:* %s\n", repoName, errMessage)
	if runURL != "" {
		details += fmt.Sprintf("*Logs:* <%s|View Execution Logs>\n", runURL)
	}
	c.deliver(ctx, Message{
		Text: fmt.Sprintf("❌ Terraform automation failed for %s: %s", repoName, errMessage),
		Blocks: []Block{
			section(":x: *Terraform Automation Error*"),
			section(details),
			divider(),
		},
	})
}

// BatchSummary reports the totals for a whole run and links up to ten
// created pull requests.
func (c *Client) BatchSummary(ctx context.Context, total, succeeded, failed int, prURLs []string) {
	header := ":white_check_mark: *Infrastructure Update Batch Complete*"
	switch {
	case failed > 0 && succeeded > 0:
		header = ":warning: *Infrastructure Update Batch Completed with Issues*"
	case failed > 0:
		header = ":x: *Infrastructure Update Batch Failed*"
	}
	blocks := []Block{section(header)}

	summary := fmt.Sprintf("*Summary:*\n• Total repositories: %d\n• Successful: %d\n", total, succeeded)
	if failed > 0 {
		summary += fmt.Sprintf("• Failed: %d\n", failed)
	}
	summary += fmt.Sprintf("• PRs created: %d\n", len(prURLs))
	blocks = append(blocks, section(summary))

	if len(prURLs) > 0 {
		var b strings.Builder
		b.WriteString("*Created Pull Requests:*\n")
		for i, prURL := range prURLs {
			if i == maxPRLinks {
				fmt.Fprintf(&b, "• ... and %d more PRs\n", len(prURLs)-maxPRLinks)
				break
			}
			fmt.Fprintf(&b, "• <%s|%s>\n", prURL, prLinkLabel(prURL))
		}
		blocks = append(blocks, section(b.String()))
	}
	blocks = append(blocks, divider())

	c.deliver(ctx, Message{
		Text:   fmt.Sprintf("📊 Infrastructure Update Complete: %d/%d successful", succeeded, total),
		Blocks: blocks,
	})
}

// prLinkLabel derives "owner/repo PR #n" from a pull request URL, falling
// back to a generic label for unexpected shapes.
func prLinkLabel(prURL string) string {
	parts := strings.Split(prURL, "/")
	if len(parts) < 4 {
		return "View PR"
	}
	repoName := parts[len(parts)-4] + "/" + parts[len(parts)-3]
	return fmt.Sprintf("%s PR #%s", repoName, parts[len(parts)-1])
}

func (c *Client) deliver(ctx context.Context, msg Message) {
	if err := c.Send(ctx, msg); err != nil {
		ctxlog.FromContext(ctx).Error("notification delivery failed", "error", err)
	}
}
