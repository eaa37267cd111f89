package pipeline

import (
	"context"
	"errors"

	"github.com/specialistvlad/f2eflow/internal/archive"
	"github.com/specialistvlad/f2eflow/internal/config"
	"github.com/specialistvlad/f2eflow/internal/dag"
	"github.com/specialistvlad/f2eflow/internal/fsutil"
	"github.com/specialistvlad/f2eflow/internal/stage"
)

// Task names.
const (
	LibraryAssets  = "library:assets"
	LibraryStyles  = "library:styles"
	LibraryScripts = "library:scripts"
	CopyLibrary    = "copy:library"
	CleanJS        = "clean:js"
	BundleJS       = "bundle:js"
	CompileJS      = "compile:js"
	CleanImg       = "clean:img"
	Compass        = "compass"
	CopyCSS        = "copy:css"
	CopyImg        = "copy:img"
	PublishCSS     = "publish:css"
	CompileCSS     = "compile:css"
	CompileAsset   = "compile:asset"
	CleanHTML      = "clean:html"
	RenderHTML     = "render:html"
	CompileHTML    = "compile:html"
	Default        = "default"
	Server         = "server"
	Watch          = "watch"
	MinCSS         = "min:css"
	MinImage       = "min:image"
	MinJS          = "min:js"
	Minify         = "minify"
	Archive        = "archive"
)

// ErrNoServer is recorded by the server task when no server was wired in.
var ErrNoServer = errors.New("no server configured")

// Options carries the collaborators of the task set.
type Options struct {
	Paths    *config.Paths
	Settings *config.Settings
	// Styles compiles preprocessor sources.
	Styles stage.StyleCompiler
	// NodeEnv is substituted for process.env.NODE_ENV in bundles.
	NodeEnv string
	// Archiver writes archive bundles.
	Archiver *archive.Archiver
	// Uploader, when set, publishes each bundle after it is written.
	Uploader archive.Uploader
	// Serve is the long-lived server task. It should block until ctx is
	// done.
	Serve dag.Action
}

// Tasks declares the build's task set.
func Tasks(opts Options) (*dag.Tasks, error) {
	p, s := opts.Paths, opts.Settings
	serve := opts.Serve
	if serve == nil {
		serve = func(context.Context) stage.Result {
			return stage.Result{Fatal: ErrNoServer}
		}
	}

	return dag.Build(
		dag.Task{
			Name:        LibraryAssets,
			Description: "Copy passthrough assets into dist/resources/fonts",
			Action: func(ctx context.Context) stage.Result {
				return stage.Copy(ctx, stage.Spec{Inputs: p.LibAssets, OutDir: p.DistFonts})
			},
		},
		dag.Task{
			Name:        LibraryStyles,
			Description: "Concatenate library stylesheets into dist/css/lib.css",
			Action: func(ctx context.Context) stage.Result {
				return stage.Concat(ctx, stage.Spec{Inputs: p.LibStyles, OutDir: p.DistCSS}, "lib.css")
			},
		},
		dag.Task{
			Name:        LibraryScripts,
			Description: "Concatenate library scripts into dist/js/lib.js",
			Action: func(ctx context.Context) stage.Result {
				return stage.Concat(ctx, stage.Spec{Inputs: p.LibScripts, OutDir: p.DistJS}, "lib.js")
			},
		},
		dag.Task{
			Name:        CopyLibrary,
			Description: "Copy all passthrough libraries",
			Mode:        dag.Parallel,
			Deps:        []string{LibraryAssets, LibraryStyles, LibraryScripts},
		},
		dag.Task{
			Name:        CleanJS,
			Description: "Remove dist/js",
			Clean:       true,
			Action: func(ctx context.Context) stage.Result {
				return stage.Clean(ctx, p.DistJS)
			},
		},
		dag.Task{
			Name:        BundleJS,
			Description: "Bundle each src/js/*.js into dist/js",
			Action: func(ctx context.Context) stage.Result {
				return stage.Bundle(ctx,
					stage.Spec{Inputs: []string{fsutil.JoinPattern(p.SrcJS, "*.js")}, OutDir: p.DistJS},
					stage.BundleOptions{NodeEnv: opts.NodeEnv, Define: s.Define, WorkDir: p.Root})
			},
		},
		dag.Task{
			Name:        CompileJS,
			Description: "Clean, copy libraries and bundle scripts",
			Deps:        []string{CleanJS, CopyLibrary, BundleJS},
		},
		dag.Task{
			Name:        CleanImg,
			Description: "Remove dist/resources/images",
			Clean:       true,
			Action: func(ctx context.Context) stage.Result {
				return stage.Clean(ctx, p.DistImages)
			},
		},
		dag.Task{
			Name:        Compass,
			Description: "Compile src/css/sass into src/css",
			Action: func(ctx context.Context) stage.Result {
				return stage.CompileStyles(ctx, opts.Styles, stage.Spec{
					Inputs: []string{fsutil.JoinPattern(p.SrcSass, "*.sass"), fsutil.JoinPattern(p.SrcSass, "*.scss")},
					OutDir: p.SrcCSS,
				})
			},
		},
		dag.Task{
			Name:        CopyCSS,
			Description: "Copy src/css stylesheets except lib.css into dist/css",
			Action: func(ctx context.Context) stage.Result {
				return stage.Copy(ctx, stage.Spec{
					Inputs: []string{fsutil.JoinPattern(p.SrcCSS, "**", "*.css"), "!" + fsutil.JoinPattern(p.SrcCSS, "**", "lib.css")},
					OutDir: p.DistCSS,
				})
			},
		},
		dag.Task{
			Name:        CopyImg,
			Description: "Copy images into dist/resources/images",
			Action: func(ctx context.Context) stage.Result {
				return stage.Copy(ctx, stage.Spec{Inputs: stage.ImagePatterns(p.SrcImages), OutDir: p.DistImages})
			},
		},
		dag.Task{
			Name:        PublishCSS,
			Description: "Copy stylesheets and images",
			Mode:        dag.Parallel,
			Deps:        []string{CopyCSS, CopyImg},
		},
		dag.Task{
			Name:        CompileCSS,
			Description: "Clean images, compile styles and publish them",
			Deps:        []string{CleanImg, Compass, PublishCSS},
		},
		dag.Task{
			Name:        CompileAsset,
			Description: "Copy fonts into dist/resources/fonts",
			Action: func(ctx context.Context) stage.Result {
				return stage.Copy(ctx, stage.Spec{Inputs: []string{fsutil.JoinPattern(p.SrcFonts, "**")}, OutDir: p.DistFonts})
			},
		},
		dag.Task{
			Name:        CleanHTML,
			Description: "Remove dist/**/*.html",
			Clean:       true,
			Action: func(ctx context.Context) stage.Result {
				return stage.CleanFiles(ctx, fsutil.JoinPattern(p.Dist, "**", "*.html"))
			},
		},
		dag.Task{
			Name:        RenderHTML,
			Description: "Render Jade pages into dist",
			Action: func(ctx context.Context) stage.Result {
				return stage.Render(ctx,
					stage.Spec{Inputs: []string{fsutil.JoinPattern(p.SrcPages, "**", "*.jade")}, OutDir: p.Dist},
					stage.RenderOptions{UseJade: s.UseJade, Locals: s.Locals})
			},
		},
		dag.Task{
			Name:        CompileHTML,
			Description: "Clean and render pages",
			Deps:        []string{CleanHTML, RenderHTML},
		},
		dag.Task{
			Name:        Default,
			Description: "Build styles, scripts and pages",
			Deps:        []string{CompileCSS, CompileJS, CompileHTML},
		},
		dag.Task{
			Name:        Server,
			Description: "Serve dist with live reload and rebuild on change",
			Action:      serve,
		},
		dag.Task{
			Name:        Watch,
			Description: "Build, then serve and watch",
			Deps:        []string{CompileCSS, CompileJS, CompileHTML, Server},
		},
		dag.Task{
			Name:        MinCSS,
			Description: "Minify dist/css except lib.css",
			Action: func(ctx context.Context) stage.Result {
				return stage.MinifyStyles(ctx, stage.Spec{
					Inputs: []string{fsutil.JoinPattern(p.DistCSS, "**", "*.css"), "!" + fsutil.JoinPattern(p.DistCSS, "**", "lib.css")},
					OutDir: p.DistCSS,
				})
			},
		},
		dag.Task{
			Name:        MinImage,
			Description: "Recompress dist images",
			Action: func(ctx context.Context) stage.Result {
				return stage.MinifyImages(ctx, stage.Spec{Inputs: stage.ImagePatterns(p.DistImages), OutDir: p.DistImages})
			},
		},
		dag.Task{
			Name:        MinJS,
			Description: "Minify dist/js",
			Action: func(ctx context.Context) stage.Result {
				return stage.MinifyScripts(ctx, stage.Spec{Inputs: []string{fsutil.JoinPattern(p.DistJS, "**", "*.js")}, OutDir: p.DistJS})
			},
		},
		dag.Task{
			Name:        Minify,
			Description: "Minify styles, images and scripts",
			Deps:        []string{MinCSS, MinImage, MinJS},
		},
		dag.Task{
			Name:        Archive,
			Description: "Zip dist into archive/{project}_{YYYYMMDD}.zip",
			Action: func(ctx context.Context) stage.Result {
				return archiveAction(ctx, opts)
			},
		},
	)
}

func archiveAction(ctx context.Context, opts Options) stage.Result {
	bundle, err := opts.Archiver.Create(ctx, opts.Paths.Dist, opts.Settings.Project)
	if err != nil {
		return stage.Result{Fatal: err}
	}
	res := stage.Result{Written: []string{bundle}}
	if opts.Uploader != nil {
		if err := opts.Uploader.Upload(ctx, bundle); err != nil {
			res.Fatal = err
		}
	}
	return res
}
