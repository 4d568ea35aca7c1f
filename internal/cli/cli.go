package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eih3/walking/internal/adapters/cache"
	"github.com/Eih3/walking/internal/adapters/providers/imagehost"
	"github.com/Eih3/walking/internal/adapters/render"
	"github.com/Eih3/walking/internal/application/services"
	"github.com/Eih3/walking/internal/domain/entities"
	"github.com/Eih3/walking/internal/domain/providers"
	"github.com/Eih3/walking/internal/infrastructure/clients/landmarkapi"
	"github.com/Eih3/walking/internal/infrastructure/clients/redis"
	"github.com/Eih3/walking/internal/infrastructure/observability"
	"github.com/Eih3/walking/pkg/config"
)

const (
	CommandRate        = "rate"
	CommandReview      = "review"
	CommandUpload      = "upload"
	CommandSuggestions = "suggestions"
	CommandOrphans     = "orphans"
)

// ErrUsage is returned when the command line cannot be understood.
var ErrUsage = errors.New("usage: landmark <rate|review|upload|suggestions|orphans> [flags]")

// Options is a parsed command line.
type Options struct {
	Command     string
	Landmark    string
	Score       string
	Notes       string
	File        string
	LandmarkAPI string
	Limit       int64
}

// Interactions is the subset of the interaction service the CLI drives.
type Interactions interface {
	SubmitRating(ctx context.Context, landmark entities.LandmarkContext, score string) (*entities.InteractionResult, error)
	SubmitReview(ctx context.Context, landmark entities.LandmarkContext, notes string) (*entities.InteractionResult, error)
	UploadImage(ctx context.Context, landmark entities.LandmarkContext, upload entities.ImageUpload) (*entities.InteractionResult, error)
	LoadSuggestions(ctx context.Context, landmark entities.LandmarkContext) (*entities.InteractionResult, error)
	ListOrphanedImages(ctx context.Context, limit int64) ([]entities.OrphanedImage, error)
}

// ParseArgs reads the command and its flags. Flags override cfg.
func ParseArgs(args []string, cfg *config.Config) (Options, error) {
	if len(args) == 0 {
		return Options{}, ErrUsage
	}

	opts := Options{Command: args[0]}
	switch opts.Command {
	case CommandRate, CommandReview, CommandUpload, CommandSuggestions, CommandOrphans:
	default:
		return Options{}, fmt.Errorf("unknown command %q: %w", opts.Command, ErrUsage)
	}

	var help bytes.Buffer
	fs := flag.NewFlagSet("landmark "+opts.Command, flag.ContinueOnError)
	fs.SetOutput(&help)
	fs.StringVar(&opts.Landmark, "landmark", cfg.LandmarkAPI.Landmark, "Landmark id (or LANDMARK_ID env)")
	fs.StringVar(&opts.Score, "score", "", "Score to submit with rate")
	fs.StringVar(&opts.Notes, "notes", "", "Review text to submit with review")
	fs.StringVar(&opts.File, "file", "", "Image file to submit with upload")
	fs.StringVar(&opts.LandmarkAPI, "api", cfg.LandmarkAPI.BaseURL, "Landmark server base URL")
	fs.Int64Var(&opts.Limit, "limit", 100, "Maximum orphaned images to list")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return Options{}, fmt.Errorf("%w\n%s", ErrUsage, strings.TrimRight(help.String(), "\n"))
		}
		return Options{}, fmt.Errorf("%v: %w", err, ErrUsage)
	}

	switch opts.Command {
	case CommandUpload:
		if opts.File == "" {
			return Options{}, fmt.Errorf("upload requires -file: %w", ErrUsage)
		}
	case CommandOrphans:
		if opts.Limit <= 0 {
			return Options{}, fmt.Errorf("-limit must be positive: %w", ErrUsage)
		}
	}
	return opts, nil
}

// Run parses args, wires the interaction service from cfg and executes
// the command, writing the outcome to out.
func Run(ctx context.Context, args []string, cfg *config.Config, out io.Writer) error {
	opts, err := ParseArgs(args, cfg)
	if err != nil {
		return err
	}

	logger := observability.GetLogger()

	var orphanStore providers.OrphanedImageStore
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; orphaned images will only be logged")
		} else {
			defer redisClient.Close()
			orphanStore = cache.NewRedisOrphanStore(redisClient)
		}
	}

	imageHost, err := imagehost.NewImgurProviderWithOptions(
		cfg.ImageHost.ClientID,
		cfg.ImageHost.UploadURL,
		&http.Client{Timeout: cfg.ImageHost.Timeout},
		nil,
	)
	if err != nil && opts.Command == CommandUpload {
		return err
	}

	service := services.NewInteractionService(
		landmarkapi.NewClient(opts.LandmarkAPI, cfg.LandmarkAPI.Timeout),
		imageHost,
		render.NewPageRenderer(),
		orphanStore,
		nil,
	)
	return Execute(ctx, opts, service, out)
}

// Execute runs one parsed command against service.
func Execute(ctx context.Context, opts Options, service Interactions, out io.Writer) error {
	landmark := entities.NewLandmarkContext(opts.Landmark)

	var (
		result *entities.InteractionResult
		err    error
	)
	switch opts.Command {
	case CommandRate:
		result, err = service.SubmitRating(ctx, landmark, opts.Score)
	case CommandReview:
		result, err = service.SubmitReview(ctx, landmark, opts.Notes)
	case CommandUpload:
		result, err = uploadFile(ctx, service, landmark, opts.File)
	case CommandSuggestions:
		result, err = service.LoadSuggestions(ctx, landmark)
	case CommandOrphans:
		return listOrphans(ctx, service, opts.Limit, out)
	default:
		return fmt.Errorf("unknown command %q: %w", opts.Command, ErrUsage)
	}

	if err != nil {
		fmt.Fprintln(out, services.FailureMessage)
		return err
	}
	return printResult(out, result)
}

func uploadFile(ctx context.Context, service Interactions, landmark entities.LandmarkContext, path string) (*entities.InteractionResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return service.UploadImage(ctx, landmark, entities.ImageUpload{
		FileName:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Content:     file,
	})
}

func listOrphans(ctx context.Context, service Interactions, limit int64, out io.Writer) error {
	orphans, err := service.ListOrphanedImages(ctx, limit)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(out)
	for _, orphan := range orphans {
		if err := encoder.Encode(orphan); err != nil {
			return err
		}
	}
	return nil
}

func printResult(out io.Writer, result *entities.InteractionResult) error {
	if result == nil {
		return nil
	}
	if result.Notification != nil {
		fmt.Fprintln(out, result.Notification.Message)
	}
	if result.ImageHTML != "" {
		fmt.Fprintln(out, result.ImageHTML)
	}
	if result.HeadingVisible {
		fmt.Fprintf(out, "Other favorites nearby (%d)\n", len(result.Suggestions))
		if result.ItemsHTML != "" {
			fmt.Fprintln(out, result.ItemsHTML)
		}
	}
	return nil
}
