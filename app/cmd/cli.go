package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Rakhulsr/go-catalog/app/configs"
	"github.com/Rakhulsr/go-catalog/app/db/seeders"
	"github.com/Rakhulsr/go-catalog/app/models"
	"github.com/Rakhulsr/go-catalog/app/models/migrations"
	"github.com/Rakhulsr/go-catalog/app/services"
	"github.com/Rakhulsr/go-catalog/app/storage"
	"github.com/Rakhulsr/go-catalog/app/utils/format"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

// NewApp builds the catalog command tree. Command output goes to out.
func NewApp(env configs.ENV, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the storefront catalog",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withDB(env, func(db *gorm.DB) error {
						if err := migrations.AutoMigrate(db); err != nil {
							return err
						}
						log.Info().Msg("migration complete")
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "Load the sample catalog",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "fake", Usage: "number of random products to add"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withCatalog(env, func(svc *services.CatalogService, _ *gorm.DB) error {
						res, err := seeders.DBSeed(ctx, svc, int(c.Int("fake")))
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "seeded %d products (%d already present)\n", res.Created, res.Skipped)
						return nil
					})
				},
			},
			{
				Name:      "import",
				Usage:     "Import a YAML catalog manifest",
				ArgsUsage: "FILE",
				Action: func(ctx context.Context, c *cli.Command) error {
					path := c.Args().First()
					if path == "" {
						return fmt.Errorf("import needs a manifest file")
					}
					m, err := seeders.LoadManifest(path)
					if err != nil {
						return err
					}
					return withCatalog(env, func(svc *services.CatalogService, _ *gorm.DB) error {
						res, err := seeders.ImportManifest(ctx, svc, m)
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "imported %d products, %d variants, %d images (%d skipped)\n",
							res.Created, res.Variants, res.Images, res.Skipped)
						return nil
					})
				},
			},
			{
				Name:  "products",
				Usage: "List products",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "search name and description"},
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.BoolFlag{Name: "available", Usage: "only products on sale now"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withCatalog(env, func(svc *services.CatalogService, _ *gorm.DB) error {
						page := int(c.Int("page"))
						var (
							result *services.ProductPage
							err    error
						)
						switch {
						case c.String("query") != "":
							result, err = svc.SearchProducts(ctx, c.String("query"), page, 0)
						case c.Bool("available"):
							result, err = svc.ListAvailableProducts(ctx, page, 0)
						default:
							result, err = svc.ListProducts(ctx, page, 0)
						}
						if err != nil {
							return err
						}
						printProducts(out, result)
						return nil
					})
				},
			},
			{
				Name:      "product",
				Usage:     "Show a product with its variants",
				ArgsUsage: "SLUG",
				Action: func(ctx context.Context, c *cli.Command) error {
					slug := c.Args().First()
					if slug == "" {
						return fmt.Errorf("product needs a slug")
					}
					return withCatalog(env, func(svc *services.CatalogService, _ *gorm.DB) error {
						product, err := svc.GetProductBySlug(ctx, slug)
						if err != nil {
							return err
						}
						printProduct(out, product)
						return nil
					})
				},
			},
			{
				Name:  "categories",
				Usage: "List tax and shipping categories",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withCatalog(env, func(svc *services.CatalogService, _ *gorm.DB) error {
						taxes, err := svc.ListTaxCategories(ctx)
						if err != nil {
							return err
						}
						shippings, err := svc.ListShippingCategories(ctx)
						if err != nil {
							return err
						}
						w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
						fmt.Fprintln(w, "KIND\tNAME")
						for _, tc := range taxes {
							fmt.Fprintf(w, "tax\t%s\n", tc.Name)
						}
						for _, sc := range shippings {
							fmt.Fprintf(w, "shipping\t%s\n", sc.Name)
						}
						return w.Flush()
					})
				},
			},
			{
				Name:  "option-types",
				Usage: "List option types with their values",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withCatalog(env, func(svc *services.CatalogService, _ *gorm.DB) error {
						optionTypes, err := svc.ListOptionTypes(ctx)
						if err != nil {
							return err
						}
						w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
						fmt.Fprintln(w, "NAME\tPRESENTATION\tVALUES")
						for _, ot := range optionTypes {
							values := make([]string, 0, len(ot.OptionValues))
							for _, v := range ot.OptionValues {
								values = append(values, v.Name)
							}
							fmt.Fprintf(w, "%s\t%s\t%s\n", ot.Name, ot.Presentation, strings.Join(values, ", "))
						}
						return w.Flush()
					})
				},
			},
			{
				Name:      "discontinue",
				Usage:     "Take a product off sale",
				ArgsUsage: "SLUG",
				Action: func(ctx context.Context, c *cli.Command) error {
					slug := c.Args().First()
					if slug == "" {
						return fmt.Errorf("discontinue needs a slug")
					}
					return withCatalog(env, func(svc *services.CatalogService, _ *gorm.DB) error {
						product, err := svc.GetProductBySlug(ctx, slug)
						if err != nil {
							return err
						}
						if err := svc.DiscontinueProduct(ctx, product.ID); err != nil {
							return err
						}
						fmt.Fprintf(out, "%s discontinued\n", product.Name)
						return nil
					})
				},
			},
			{
				Name:      "cancel-order",
				Usage:     "Cancel an order if the cancellation policy allows it",
				ArgsUsage: "CODE",
				Action: func(ctx context.Context, c *cli.Command) error {
					code := c.Args().First()
					if code == "" {
						return fmt.Errorf("cancel-order needs an order code")
					}
					return withDB(env, func(db *gorm.DB) error {
						orders := services.NewOrderService(db, Canceler(env))
						order, err := orders.Cancel(ctx, code)
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "order %s cancelled at %s\n", order.Code, order.CancelledAt.Format(time.RFC3339))
						return nil
					})
				},
			},
		},
	}
}

// Canceler registers the configured cancellation overrides on top of the
// default policy.
func Canceler(env configs.ENV) services.OrderCanceler {
	var overrides []services.CancelerOverride
	if env.CancelWindow > 0 {
		overrides = append(overrides, services.WithCancellationWindow(env.CancelWindow))
	}
	return services.ChainCancelers(services.DefaultOrderCanceler{}, overrides...)
}

func RunCli(env configs.ENV) {
	if err := NewApp(env, os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func withDB(env configs.ENV, fn func(db *gorm.DB) error) error {
	db, err := configs.OpenConnection(env)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	return fn(db)
}

func withCatalog(env configs.ENV, fn func(svc *services.CatalogService, db *gorm.DB) error) error {
	return withDB(env, func(db *gorm.DB) error {
		return fn(services.NewCatalogService(db, storage.NewLocalStore(env.AssetDir)), db)
	})
}

func printProducts(out io.Writer, page *services.ProductPage) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSLUG\tPRICE\tVARIANTS\tAVAILABLE")
	now := time.Now()
	for _, p := range page.Products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.Name, p.Slug, format.Price(p.Price), len(p.Variants), yesNo(p.Available(now)))
	}
	w.Flush()
	fmt.Fprintf(out, "page %d, %d of %d products\n", page.Page, len(page.Products), page.Total)
}

func printProduct(out io.Writer, p *models.Product) {
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.Slug)
	fmt.Fprintf(out, "price:     %s\n", format.Price(p.Price))
	if p.AvailableOn != nil {
		fmt.Fprintf(out, "available: %s\n", p.AvailableOn.Format(time.DateOnly))
	} else {
		fmt.Fprintln(out, "available: no")
	}
	if len(p.OptionTypes) > 0 {
		names := make([]string, 0, len(p.OptionTypes))
		for _, ot := range p.OptionTypes {
			names = append(names, ot.Presentation)
		}
		fmt.Fprintf(out, "options:   %s\n", strings.Join(names, ", "))
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tOPTIONS\tPRICE\tSTOCK\tIMAGES")
	for _, v := range p.Variants {
		opts := "master"
		if !v.IsMaster {
			values := make([]string, 0, len(v.OptionValues))
			for _, ov := range v.OptionValues {
				values = append(values, ov.Presentation)
			}
			opts = strings.Join(values, " / ")
		}
		if !v.Active() {
			opts += " (inactive)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", v.SKU, opts, format.Price(v.Price), v.StockOnHand, len(v.Images))
	}
	w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
