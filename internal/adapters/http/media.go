package http

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type mediaFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// listMedia enumerates the files the admin page can pick from.
// A missing directory is an empty listing.
func listMedia(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := os.ReadDir(dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Error().Err(err).Str("module", "adapters.http").Str("dir", dir).Msg("list media")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot list media"})
			return
		}

		files := make([]mediaFile, 0, len(entries))
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			files = append(files, mediaFile{Name: name, Size: info.Size(), URL: "/media/" + name})
		}
		sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
		c.JSON(http.StatusOK, gin.H{"files": files})
	}
}
