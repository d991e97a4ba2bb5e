package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"aistyleguide/internal/ai"
	"aistyleguide/internal/blog"
	"aistyleguide/internal/cache"
	"aistyleguide/internal/database"
	"aistyleguide/internal/models"
	"aistyleguide/internal/search"
	"aistyleguide/internal/store"
)

var (
	topicsFile  string
	blogAuthor  string
	stopOnError bool
)

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Blog maintenance",
}

// topicsDoc is the shape of a --file document:
//
//	author: Editorial Team
//	topics:
//	  - topic: How to write a tone of voice guide
//	    keywords: [tone of voice, brand voice]
//	    research: true
//	    publish: false
type topicsDoc struct {
	Author string               `yaml:"author"`
	Topics []models.BlogRequest `yaml:"topics"`
}

func readTopics(path string) (*topicsDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics: %w", err)
	}
	var doc topicsDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse topics: %w", err)
	}
	if len(doc.Topics) == 0 {
		return nil, fmt.Errorf("parse topics: %s lists no topics", path)
	}
	for i, t := range doc.Topics {
		if err := blog.ValidateRequest(t); err != nil {
			return nil, fmt.Errorf("topic %d: %w", i+1, err)
		}
	}
	return &doc, nil
}

var blogGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate blog posts for every topic in a YAML file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readTopics(topicsFile)
		if err != nil {
			return err
		}
		if blogAuthor != "" {
			doc.Author = blogAuthor
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		registry := ai.NewRegistry(cfg.AIProvider, cfg.AIProviders())
		client := ai.NewClient(registry, cfg.RetryConfig())
		posts := store.NewBlogPostStore(db)
		svc := blog.NewService(client, search.New(cfg.FirecrawlKey, cfg.FirecrawlBaseURL), posts)

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		var failed, published int
		for _, req := range doc.Topics {
			req.AuthorName = doc.Author
			post, err := svc.Generate(ctx, req)
			if err != nil {
				failed++
				slog.Error("blog generation failed", "topic", req.Topic, "error", err)
				if stopOnError {
					return err
				}
				continue
			}
			if post.Published {
				published++
			}
			fmt.Fprintf(out, "%s\t%s\n", post.Slug, post.Title)
		}

		// Published posts change the public index.
		if published > 0 {
			if rc, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB); err != nil {
				slog.Warn("page cache not invalidated", "error", err)
			} else {
				cache.NewPageCache(rc, 0).InvalidateAll(ctx)
				rc.Close()
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d topics failed", failed, len(doc.Topics))
		}
		return nil
	},
}

func init() {
	blogGenerateCmd.Flags().StringVarP(&topicsFile, "file", "f", "topics.yaml", "YAML file listing topics")
	blogGenerateCmd.Flags().StringVar(&blogAuthor, "author", "", "Author name, overrides the file")
	blogGenerateCmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first failed topic")
	blogCmd.AddCommand(blogGenerateCmd)
	rootCmd.AddCommand(blogCmd)
}
