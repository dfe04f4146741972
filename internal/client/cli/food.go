package cli

import (
	"fmt"

	"github.com/dmitrijs2005/foodlog/internal/client/entities/foods"
	"github.com/dmitrijs2005/foodlog/internal/filex"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/dmitrijs2005/foodlog/internal/netx"
	"github.com/spf13/cobra"
)

func (r *root) newFoodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "food",
		Short: "Manage the food catalogue",
	}
	cmd.AddCommand(
		r.newFoodAddCmd(),
		r.newFoodEditCmd(),
		r.newFoodListCmd(),
		r.newFoodBarcodeCmd(),
		r.newDeleteCmd(models.TypeFood, func(a *App) deleter { return a.foods }),
		r.newFoodPhotoCmd(),
		r.newFoodPhotoURLCmd(),
	)
	return cmd
}

func foodFlags(cmd *cobra.Command, f *models.Food) {
	fs := cmd.Flags()
	fs.StringVar(&f.Name, "name", "", "food name")
	fs.StringVar(&f.Brand, "brand", "", "brand")
	fs.StringVar(&f.Barcode, "barcode", "", "EAN/UPC barcode")
	fs.Float64Var(&f.ServingSize, "serving-size", 100, "size of one serving")
	fs.StringVar(&f.ServingUnit, "unit", "g", "unit of the serving size")
	addFactsFlags(fs, &f.Facts)
}

func (r *root) newFoodAddCmd() *cobra.Command {
	var f models.Food
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a food; facts are per serving",
		Args:  cobra.NoArgs,
		RunE: r.run(func(cmd *cobra.Command, a *App, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.foods.Create(cmd.Context(), sess, f)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "created", models.TypeFood, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
	foodFlags(cmd, &f)
	return cmd
}

func (r *root) newFoodEditCmd() *cobra.Command {
	var f models.Food
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of a food",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			res, err := a.foods.Update(cmd.Context(), sess, args[0], func(cur *models.Food) error {
				if fs.Changed("name") {
					cur.Name = f.Name
				}
				if fs.Changed("brand") {
					cur.Brand = f.Brand
				}
				if fs.Changed("barcode") {
					cur.Barcode = f.Barcode
				}
				if fs.Changed("serving-size") {
					cur.ServingSize = f.ServingSize
				}
				if fs.Changed("unit") {
					cur.ServingUnit = f.ServingUnit
				}
				changedFacts(fs, f.Facts, &cur.Facts)
				return nil
			})
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "updated", models.TypeFood, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
	foodFlags(cmd, &f)
	return cmd
}

func printFoods(cmd *cobra.Command, list []foods.Food) {
	tw := newTable(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tSERVING\t"+factsHeader+"\t")
	for _, f := range list {
		p := f.Payload
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s%s\t%s\t\n",
			f.ID, syncMark(f.Synced), p.Name, p.Brand, num(p.ServingSize), p.ServingUnit, factsColumns(p.Facts))
	}
	_ = tw.Flush()
}

func (r *root) newFoodListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List foods, optionally those whose name starts with prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			list, err := a.foods.Search(cmd.Context(), sess, prefix)
			if err != nil {
				return err
			}
			printFoods(cmd, list)
			return nil
		}),
	}
}

func (r *root) newFoodBarcodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "barcode <code>",
		Short: "Find a food by barcode",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			f, err := a.foods.FindByBarcode(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			printFoods(cmd, []foods.Food{f})
			return nil
		}),
	}
}

func (r *root) newFoodPhotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "photo <id> <file>",
		Short: "Upload a photo of a food (needs the server)",
		Args:  cobra.ExactArgs(2),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			key, err := a.uploadPhoto(cmd, args[1])
			if err != nil {
				return err
			}
			res, err := a.foods.SetPhoto(cmd.Context(), sess, args[0], key)
			if err != nil {
				return err
			}
			printOutcome(cmd.OutOrStdout(), "updated", models.TypeFood, res.Value.ID, res.Outcome, res.RemoteErr)
			return nil
		}),
	}
}

func (r *root) newFoodPhotoURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "photo-url <id>",
		Short: "Print a temporary download link for the photo of a food",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(cmd *cobra.Command, a *App, args []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			f, err := a.foods.Get(cmd.Context(), sess, args[0])
			if err != nil {
				return err
			}
			if f.Payload.PhotoKey == "" {
				return fmt.Errorf("food %s has no photo", args[0])
			}
			url, err := a.remote.PresignPhotoDownload(cmd.Context(), f.Payload.PhotoKey)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		}),
	}
}

// uploadPhoto sends the file at path to object storage and returns its key.
func (a *App) uploadPhoto(cmd *cobra.Command, path string) (string, error) {
	data, err := filex.ReadLimited(path, netx.MaxPhotoSize)
	if err != nil {
		return "", err
	}
	key, url, err := a.remote.PresignPhotoUpload(cmd.Context())
	if err != nil {
		return "", fmt.Errorf("failed to get upload url: %w", err)
	}
	if err := netx.UploadToPresignedURL(cmd.Context(), a.http, url, data); err != nil {
		return "", err
	}
	return key, nil
}
