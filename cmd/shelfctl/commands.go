package main

import (
	"fmt"
	"io"
	"strings"

	"campus_shelf/app"
	"campus_shelf/catalog"
	"campus_shelf/db"
	"campus_shelf/models"
	"campus_shelf/views"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		if err := db.Migrate(conn); err != nil {
			return err
		}
		logger.Info("migrate done")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo peers and books (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		if err := db.Migrate(conn); err != nil {
			return err
		}
		return app.SeedCatalog(cmd.Context(), db.NewRepo(conn), logger)
	},
}

var (
	browseSegment     string
	browseCollege     string
	browseQuery       string
	browseUser        string
	browseAllColleges bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Print the book list a user would see for a segment",
	Long: `Runs the same filter and sort as the Explore view.

Example:
  shelfctl browse --segment LIBRARY --college MIT --user <uuid>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, err := views.ParseSegment(strings.ToUpper(browseSegment))
		if err != nil {
			return err
		}
		conn, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		repo := db.NewRepo(conn)
		ctx := cmd.Context()

		books, err := repo.ListBooks(ctx)
		if err != nil {
			return err
		}
		if seg == views.Seller {
			printBooks(cmd.OutOrStdout(), catalog.OwnListings(books, browseUser))
			return nil
		}
		var accepted []string
		if seg == views.Library && browseUser != "" {
			reqs, err := repo.ListRequestsByBorrower(ctx, browseUser)
			if err != nil {
				return err
			}
			accepted = catalog.AcceptedBookIDs(reqs, browseUser)
		}
		out := catalog.FilterSort(books, catalog.Filter{
			Segment:         seg,
			FilterCollege:   !browseAllColleges,
			UserCollege:     browseCollege,
			AcceptedBookIDs: accepted,
			Query:           browseQuery,
		})
		logger.Debug("browse", zap.String("segment", seg.String()), zap.Int("catalog", len(books)), zap.Int("visible", len(out)))
		printBooks(cmd.OutOrStdout(), out)
		return nil
	},
}

var (
	reqDonor  string
	reqStatus string
	reqQuery  string
	reqPage   int
	reqSize   int
)

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List book requests with book title and borrower",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		res, err := db.NewRepo(conn).ListRequestRows(cmd.Context(), db.RequestRowsQuery{
			DonorID: reqDonor,
			Status:  strings.ToUpper(reqStatus),
			Q:       reqQuery,
			Page:    reqPage,
			Size:    reqSize,
		})
		if err != nil {
			return err
		}
		printRequests(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseSegment, "segment", "BUYER", "BUYER, SELLER or LIBRARY")
	browseCmd.Flags().StringVar(&browseCollege, "college", "MIT", "viewer's college")
	browseCmd.Flags().StringVarP(&browseQuery, "query", "q", "", "title/author substring")
	browseCmd.Flags().StringVar(&browseUser, "user", "", "viewer user id (SELLER listings, LIBRARY accepted books)")
	browseCmd.Flags().BoolVar(&browseAllColleges, "all-colleges", false, "disable the college filter")

	requestsCmd.Flags().StringVar(&reqDonor, "donor", "", "donor user id")
	requestsCmd.Flags().StringVar(&reqStatus, "status", "", "PENDING, ACCEPTED or REJECTED")
	requestsCmd.Flags().StringVarP(&reqQuery, "query", "q", "", "book title or borrower name")
	requestsCmd.Flags().IntVar(&reqPage, "page", 1, "page number")
	requestsCmd.Flags().IntVar(&reqSize, "size", 20, "page size")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printBooks(w io.Writer, books []models.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "no books")
		return
	}
	for i, b := range books {
		flag := " "
		if b.IsUrgent {
			flag = "!"
		}
		fmt.Fprintf(w, "%2d. %s %-40s  %-24s  %-8s  %s\n", i+1, flag, truncate(b.Title, 40), truncate(b.Author, 24), b.Condition, b.College)
	}
	fmt.Fprintf(w, "\n%d books\n", len(books))
}

func printRequests(w io.Writer, res *db.PagedRequestRows) {
	for _, r := range res.Items {
		fmt.Fprintf(w, "%-26s  %-9s  %-17s  %-32s  %s\n",
			r.ID, r.Status, r.Kind, truncate(r.BookTitle, 32), r.BorrowerName)
	}
	fmt.Fprintf(w, "\n%d of %d requests\n", len(res.Items), res.Total)
}
