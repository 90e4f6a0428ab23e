// Package cli implements storectl, the admin shell: a cobra command tree
// whose commands mount a store, trigger its fetch and render the result.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/store"
)

// ErrFetchFailed is returned after a failed fetch has been rendered, so the
// caller only needs to set the exit code.
var ErrFetchFailed = errors.New("fetch failed")

// API is everything storectl reads from the storefront.
type API interface {
	store.ProductAPI
	store.UserAPI
	ProductBySlug(ctx context.Context, slug string) (*domain.RawProduct, error)
}

// APIFactory builds an API for the resolved configuration.
type APIFactory func(Config) API

// NewRootCommand returns the storectl command tree. Flags on the root
// override cfg.
func NewRootCommand(cfg Config, newAPI APIFactory) *cobra.Command {
	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Storefront admin shell",
		Long:          "storectl browses the storefront catalog and the admin product and customer lists.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "storefront API base URL (STORECTL_API_URL)")
	root.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "admin bearer token (STORECTL_TOKEN)")

	// Commands read cfg when they run, after flags were parsed.
	api := func() API { return newAPI(cfg) }

	root.AddCommand(
		newProductsCommand(api),
		newUsersCommand(api),
		newCatalogCommand(api),
	)
	return root
}

func newProductsCommand(api func() API) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List and inspect products",
	}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := store.NewProductStore(api(), opts)
			watch(cmd, s.Store, "products")
			s.FetchProducts(cmd.Context())
			return render(cmd, s.State(), NewStyles(cmd.OutOrStdout()).ProductTable)
		},
	}
	addListFlags(list, &opts)
	list.Flags().StringVar(&opts.Category, "category", "", "only products in this category slug or id")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one product with its variants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store.NewProductStore(api(), client.ListOptions{})
			watch(cmd, s.Detail, "product")
			s.FetchProduct(cmd.Context(), args[0])
			return render(cmd, s.Detail.State(), detailView(NewStyles(cmd.OutOrStdout())))
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

func newUsersCommand(api func() API) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List customers",
	}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := store.NewUserStore(api(), opts)
			watch(cmd, s.Store, "users")
			s.FetchUsers(cmd.Context())
			return render(cmd, s.State(), NewStyles(cmd.OutOrStdout()).UserTable)
		},
	}
	addListFlags(list, &opts)

	cmd.AddCommand(list)
	return cmd
}

func newCatalogCommand(api func() API) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog <slug>",
		Short: "Look up a product in the public catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := api()
			s := store.New[domain.DisplayProduct]("Failed to fetch product")
			watch(cmd, s, "product")
			s.Fetch(cmd.Context(), func(ctx context.Context) ([]domain.DisplayProduct, error) {
				raw, err := a.ProductBySlug(ctx, args[0])
				if err != nil {
					return nil, err
				}
				return []domain.DisplayProduct{domain.NormalizeProduct(*raw)}, nil
			})
			return render(cmd, s.State(), detailView(NewStyles(cmd.OutOrStdout())))
		},
	}
}

func addListFlags(cmd *cobra.Command, opts *client.ListOptions) {
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.PerPage, "per-page", 20, "items per page")
}

// watch prints a progress line to stderr whenever the store starts loading.
func watch[T any](cmd *cobra.Command, s *store.Store[T], what string) {
	w := cmd.ErrOrStderr()
	muted := NewStyles(w).Muted
	s.Subscribe(func(st store.State[T]) {
		if st.Phase == store.Loading {
			fmt.Fprintln(w, muted.Render("Loading "+what+"..."))
		}
	})
}

// render writes whatever items the store holds, followed by the error view
// when the last fetch failed.
func render[T any](cmd *cobra.Command, st store.State[T], view func([]T) string) error {
	out := cmd.OutOrStdout()
	if st.Phase == store.Loaded || len(st.Items) > 0 {
		fmt.Fprintln(out, view(st.Items))
	}
	if st.Phase == store.Failed {
		fmt.Fprintln(out, NewStyles(out).ErrorView(st.Error))
		return ErrFetchFailed
	}
	return nil
}

func detailView(s Styles) func([]domain.DisplayProduct) string {
	return func(items []domain.DisplayProduct) string {
		if len(items) == 0 {
			return s.Muted.Render("Not found.")
		}
		return s.ProductDetail(items[0])
	}
}

// Execute runs root and writes unrendered errors to its error stream.
func Execute(ctx context.Context, root *cobra.Command, errOut io.Writer) error {
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrFetchFailed) {
		fmt.Fprintln(errOut, NewStyles(errOut).ErrorView(err.Error()))
	}
	return err
}
