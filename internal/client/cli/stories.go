package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/storysync/internal/client/cache"
	"github.com/dmitrijs2005/storysync/internal/client/models"
	"github.com/dmitrijs2005/storysync/internal/common"
	"github.com/dmitrijs2005/storysync/internal/filex"
)

const timeLayout = "2006-01-02 15:04"

var errPartialLocation = errors.New("enter both latitude and longitude, or leave both empty")

// Stories fetches and prints the story list. The list is remembered so that
// other commands can refer to stories by their position.
func (a *App) Stories(ctx context.Context) error {
	stories, err := a.storyService.List(ctx)
	if err != nil {
		return err
	}
	a.lastStories = stories

	if len(stories) == 0 {
		fmt.Fprintln(a.out, "No stories yet.")
		return nil
	}

	for i, s := range stories {
		mark := " "
		if ok, err := a.favoriteService.IsFavorite(ctx, s.ID); err == nil && ok {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s%3d. %s (%s) %s\n", mark, i+1, s.Name, s.CreatedAt.Local().Format(timeLayout), s.ID)
		if s.Description != "" {
			fmt.Fprintf(a.out, "      %s\n", oneLine(s.Description))
		}
	}
	return nil
}

// Add prompts for a new story and sends it, or queues it when offline.
func (a *App) Add(ctx context.Context) error {
	desc, err := GetMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	if desc == "" {
		return fmt.Errorf("description is required")
	}

	path, err := getSimpleText(a.reader, "Enter photo file path", a.out)
	if err != nil {
		return err
	}
	photo, err := filex.ReadLimited(path, common.MaxPhotoSize)
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}

	lat, err := GetOptionalFloat(a.reader, "Enter latitude (empty to skip)", a.out)
	if err != nil {
		return err
	}
	lon, err := GetOptionalFloat(a.reader, "Enter longitude (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if (lat == nil) != (lon == nil) {
		return errPartialLocation
	}

	out, err := a.storyService.Add(ctx, models.NewStory{
		Description:      desc,
		Lat:              lat,
		Lon:              lon,
		Photo:            photo,
		PhotoContentType: http.DetectContentType(photo),
	})
	if err != nil {
		return err
	}

	if out.Queued {
		fmt.Fprintf(a.out, "You are offline. Story saved as #%d and will be sent when the connection is back.\n", out.SubmissionID)
		return nil
	}
	fmt.Fprintln(a.out, "Story shared!")
	return nil
}

// Photo downloads the photo of a listed story through the request cache and
// reports where it came from.
func (a *App) Photo(ctx context.Context, ref string) error {
	s, err := a.findStory(ref)
	if err != nil {
		return err
	}
	if s.PhotoURL == "" {
		return fmt.Errorf("story %s has no photo", s.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.PhotoURL, nil)
	if err != nil {
		return err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("photo unavailable: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	source := "network"
	if resp.Header.Get(cache.HeaderCache) != "" {
		source = "cache"
	}
	fmt.Fprintf(a.out, "Photo of %s: %d bytes, %s (from %s)\n", s.ID, len(body), resp.Header.Get("Content-Type"), source)
	return nil
}

// findStory resolves ref as a 1-based position in the last listing or as a
// story id.
func (a *App) findStory(ref string) (models.Story, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(a.lastStories) {
			return models.Story{}, fmt.Errorf("no story #%d, run 'stories' first", n)
		}
		return a.lastStories[n-1], nil
	}
	for _, s := range a.lastStories {
		if s.ID == ref {
			return s, nil
		}
	}
	return models.Story{}, fmt.Errorf("story %q not found, run 'stories' first", ref)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
