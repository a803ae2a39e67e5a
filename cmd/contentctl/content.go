package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/harvestchurch/content-platform/internal/core/authority"
	"github.com/harvestchurch/content-platform/internal/core/domain"
	"github.com/harvestchurch/content-platform/internal/core/media"
	"github.com/harvestchurch/content-platform/internal/core/richtext"
)

const (
	defaultPreviewLimit = 180
	pinScanPageSize     = 50
)

type listItem struct {
	ID     string `json:"id"`
	Pinned bool   `json:"pinned"`
}

type listResponse struct {
	Data []listItem `json:"data"`
}

func newCanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "can ACTION [CATEGORY]",
		Short: "Check whether the signed-in account may perform an action",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Start(cmd.Context()); err != nil {
				return err
			}
			category := ""
			if len(args) == 2 {
				category = args[1]
			}
			answer := "no"
			if a.session.Can(authority.Action(args[0]), category) {
				answer = "yes"
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func newPinCmd(a *app) *cobra.Command {
	var unpin bool
	var current int
	cmd := &cobra.Command{
		Use:   "pin KIND ID",
		Short: "Pin or unpin a post or sermon",
		Long: `Pin or unpin a post or sermon. KIND is posts or sermons. The number of
items already pinned is read from the server unless --current is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, id := args[0], args[1]
			if kind != "posts" && kind != "sermons" {
				return fmt.Errorf("unknown kind %q: want posts or sermons", kind)
			}

			if err := a.session.Start(ctx); err != nil {
				return err
			}
			if a.session.CurrentActor() == nil {
				return domain.ErrUnauthenticated
			}
			if !a.session.Can(authority.ActionPinContent, "") {
				return fmt.Errorf("pin %s: %w", id, domain.ErrForbidden)
			}

			if current < 0 && !unpin {
				n, err := a.countPinned(cmd, kind)
				if err != nil {
					return err
				}
				current = n
			}
			if current < 0 {
				current = 0
			}

			body := map[string]any{"pinned": !unpin, "current_pinned_count": current}
			if err := a.manager.Call(ctx, http.MethodPut, "/v1/"+kind+"/"+url.PathEscape(id)+"/pin", body, nil); err != nil {
				return err
			}
			state := "pinned"
			if unpin {
				state = "unpinned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unpin, "unpin", false, "remove the pin instead of adding it")
	cmd.Flags().IntVar(&current, "current", -1, "number of items already pinned")
	return cmd
}

// countPinned reads the first page of kind. Pinned items sort first, so the
// page holds every pinned item as long as the limit is below the page size.
func (a *app) countPinned(cmd *cobra.Command, kind string) (int, error) {
	var list listResponse
	path := fmt.Sprintf("/v1/%s?limit=%d", kind, pinScanPageSize)
	if err := a.manager.Call(cmd.Context(), http.MethodGet, path, nil, &list); err != nil {
		return 0, fmt.Errorf("count pinned %s: %w", kind, err)
	}
	n := 0
	for _, item := range list.Data {
		if item.Pinned {
			n++
		}
	}
	return n, nil
}

func newEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed URL",
		Short: "Print the embeddable player URL for a video link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := media.Resolve(args[0])
			if ref.EmbedURL == "" {
				return errors.New("not an embeddable video URL")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", ref.Provider, ref.EmbedURL)
			return nil
		},
	}
}

func newPreviewCmd() *cobra.Command {
	var limit int
	var showHTML bool
	cmd := &cobra.Command{
		Use:   "preview [FILE]",
		Short: "Sanitize rich text and print its preview",
		Long:  "Sanitize rich text read from FILE, or stdin when FILE is omitted or -, and print its preview.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			clean := richtext.Sanitize(raw)
			out := cmd.OutOrStdout()
			if showHTML {
				fmt.Fprintln(out, clean)
			}
			fmt.Fprintln(out, richtext.ExtractPreview(clean, limit))
			if richtext.HasMoreContent(clean, limit) {
				fmt.Fprintln(out, "(more)")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultPreviewLimit, "preview length in characters")
	cmd.Flags().BoolVar(&showHTML, "html", false, "also print the sanitized HTML")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(args[0])
	return string(b), err
}
