package store_test

import (
	"encoding/json"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/nicholas-fedor/stevedore/pkg/store"
)

const preferencePath = "/state/stevedore/preferences.json"

var _ = ginkgo.Describe("PreferenceStore", func() {
	var (
		fs          afero.Fs
		preferences *store.PreferenceStore
	)

	ginkgo.BeforeEach(func() {
		fs = afero.NewMemMapFs()
		gomega.Expect(fs.MkdirAll("/projects/app", 0o755)).To(gomega.Succeed())
		preferences = store.NewPreferenceStore(fs, preferencePath)
	})

	ginkgo.It("should return an empty set when nothing is recorded", func() {
		gomega.Expect(preferences.Excluded("/projects/app", "app")).To(gomega.BeEmpty())
	})

	ginkgo.It("should round-trip a non-empty exclusion set", func() {
		preferences.SetExcluded("/projects/app", "app", []string{"v2", "v1", "v2"})

		gomega.Expect(preferences.Excluded("/projects/app", "app")).To(gomega.ConsistOf("v1", "v2"))
	})

	ginkgo.It("should replace rather than merge the previous set", func() {
		preferences.SetExcluded("/projects/app", "app", []string{"v1", "v2"})
		preferences.SetExcluded("/projects/app", "app", []string{"v3"})

		gomega.Expect(preferences.Excluded("/projects/app", "app")).To(gomega.ConsistOf("v3"))
	})

	ginkgo.It("should delete the entry when given an empty set", func() {
		preferences.SetExcluded("/projects/app", "app", []string{"v1"})
		preferences.SetExcluded("/projects/app", "app", nil)

		gomega.Expect(preferences.Excluded("/projects/app", "app")).To(gomega.BeEmpty())

		data, err := afero.ReadFile(fs, preferencePath)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		var raw map[string][]string
		gomega.Expect(json.Unmarshal(data, &raw)).To(gomega.Succeed())
		gomega.Expect(raw).NotTo(gomega.HaveKey("/projects/app:app"))
	})

	ginkgo.It("should not create a file for an empty set", func() {
		preferences.SetExcluded("/projects/app", "app", []string{})

		exists, err := afero.Exists(fs, preferencePath)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(exists).To(gomega.BeFalse())
	})

	ginkgo.It("should sweep entries of projects that no longer exist", func() {
		preferences.SetExcluded("/projects/app", "app", []string{"v1"})
		preferences.SetExcluded("/projects/gone", "app", []string{"v1"})

		gomega.Expect(preferences.SweepStale()).To(gomega.Equal(1))
		gomega.Expect(preferences.Excluded("/projects/app", "app")).To(gomega.ConsistOf("v1"))
		gomega.Expect(preferences.Excluded("/projects/gone", "app")).To(gomega.BeEmpty())
		gomega.Expect(preferences.StorageInfo().EntryCount).To(gomega.Equal(1))
	})

	ginkgo.It("should treat a corrupt file as empty", func() {
		gomega.Expect(afero.WriteFile(fs, preferencePath, []byte("[]x"), 0o644)).To(gomega.Succeed())

		gomega.Expect(preferences.Excluded("/projects/app", "app")).To(gomega.BeEmpty())
	})
})
