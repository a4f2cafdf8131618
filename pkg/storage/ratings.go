/*
Copyright The Gamebird Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package storage

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Local ratings mirror what the device has submitted to the server, so the
// UI can render stars while offline.

type ratingsFile struct {
	Ratings map[string]int `json:"ratings"`
}

// LoadRatings returns the device's ratings keyed by game slug.
func (s *Store) LoadRatings() (map[string]int, error) {
	data, err := os.ReadFile(s.ratingsPath())
	if os.IsNotExist(err) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}

	rf := ratingsFile{}
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", s.ratingsPath())
	}
	if rf.Ratings == nil {
		rf.Ratings = map[string]int{}
	}
	return rf.Ratings, nil
}

// SetRating records a 1-5 star rating for a title.
func (s *Store) SetRating(slug string, stars int) error {
	if stars < 1 || stars > 5 {
		return errors.Errorf("rating must be between 1 and 5, got %d", stars)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ratings, err := s.LoadRatings()
	if err != nil {
		return err
	}
	ratings[slug] = stars
	return writeJSON(s.ratingsPath(), ratingsFile{Ratings: ratings})
}

// RemoveRating drops the rating for a title. Returns whether one existed.
func (s *Store) RemoveRating(slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ratings, err := s.LoadRatings()
	if err != nil {
		return false, err
	}
	if _, ok := ratings[slug]; !ok {
		return false, nil
	}
	delete(ratings, slug)
	return true, writeJSON(s.ratingsPath(), ratingsFile{Ratings: ratings})
}
