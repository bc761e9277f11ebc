package ditherer

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ResultsDir returns the directory results for path are written to, a
// sibling named after the input with a "_results" suffix.
func ResultsDir(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(filepath.Dir(path), base+"_results")
}

// ResultName returns the file name used for the frame with the zero-based
// index i.
func ResultName(i int) string {
	return fmt.Sprintf("result_%04d.png", i+1)
}

func isImage(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

type frame struct {
	index int
	path  string
}

// findFrames lists the images directly inside dir in lexical order so frame
// numbering is stable.
func findFrames(dir string) ([]string, error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	info, err := d.Stat()
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return nil, errors.New("not a directory")
	}

	files, err := d.Readdirnames(0)
	if err != nil {
		return nil, err
	}

	var frames []string
	for _, file := range files {
		// Ignore any hidden files, otherwise we end up fighting with things like Spotlight, etc.
		if file[0] == '.' || !isImage(file) {
			continue
		}
		frames = append(frames, filepath.Join(dir, file))
	}
	sort.Strings(frames)

	return frames, nil
}

func sendFrames(ctx context.Context, files []string) (<-chan frame, <-chan error) {
	out := make(chan frame)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for i, file := range files {
			select {
			case out <- frame{index: i, path: file}:
			case <-ctx.Done():
				errc <- errors.New("walk cancelled")
				return
			}
		}
	}()
	return out, errc
}

func decodeFile(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	return m, err
}

func encodeFile(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}

	if err := png.Encode(f, m); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (d *Ditherer) frameWorker(ctx context.Context, in <-chan frame, dir string, s Settings) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for f := range in {
			m, err := decodeFile(f.path)
			if err != nil {
				errc <- fmt.Errorf("%s: %w", f.path, err)
				return
			}

			out, err := d.Process(m, s)
			if err != nil {
				errc <- fmt.Errorf("%s: %w", f.path, err)
				return
			}

			file := filepath.Join(dir, ResultName(f.index))
			if err := encodeFile(file, out); err != nil {
				errc <- err
				return
			}

			d.logger.Printf("Wrote \"%s\" from \"%s\"\n", file, f.path)

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return errc
}

func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	var first error
	for err := range errc {
		if err != nil && first == nil {
			first = err
			// Stop the remaining workers but keep draining
			cancel()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// ProcessFiles dithers each file in order with workers goroutines and writes
// the results into dir as result_0001.png, result_0002.png and so on.
func (d *Ditherer) ProcessFiles(files []string, dir string, s Settings, workers int) error {
	if workers < 1 {
		workers = 1
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	frames, errc := sendFrames(ctx, files)
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errcList = append(errcList, d.frameWorker(ctx, frames, dir, s))
	}

	return waitForPipeline(cancelFunc, errcList...)
}

// ProcessDirectory dithers every image in path, treating them as the frames
// of a video in file name order, and returns the directory the results were
// written to.
func (d *Ditherer) ProcessDirectory(path string, s Settings, workers int) (string, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	files, err := findFrames(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no images found in \"%s\"", dir)
	}

	out := ResultsDir(dir)
	return out, d.ProcessFiles(files, out, s, workers)
}

// ProcessFile dithers a single image and writes it to the results directory
// beside it, returning the name of the written file.
func (d *Ditherer) ProcessFile(path string, s Settings) (string, error) {
	file, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	dir := ResultsDir(file)
	if err := d.ProcessFiles([]string{file}, dir, s, 1); err != nil {
		return "", err
	}

	return filepath.Join(dir, ResultName(0)), nil
}
