package models

import (
	"compress/bzip2"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
)

// Bundle names one downloadable model file.
type Bundle struct {
	Name string
	URL  string
}

// DefaultBundles lists the dlib model files the pipeline needs: a face
// detector, a 5-point landmark predictor, and the recognition resnet.
func DefaultBundles() []Bundle {
	return []Bundle{
		{
			Name: "mmod_human_face_detector.dat",
			URL:  "http://dlib.net/files/mmod_human_face_detector.dat.bz2",
		},
		{
			Name: "shape_predictor_5_face_landmarks.dat",
			URL:  "http://dlib.net/files/shape_predictor_5_face_landmarks.dat.bz2",
		},
		{
			Name: "dlib_face_recognition_resnet_model_v1.dat",
			URL:  "http://dlib.net/files/dlib_face_recognition_resnet_model_v1.dat.bz2",
		},
	}
}

// Verify checks that all bundle files exist in modelDir.
func Verify(modelDir string, bundles []Bundle) error {
	for _, b := range bundles {
		path := filepath.Join(modelDir, b.Name)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("missing model file %s: %w", b.Name, err)
		}
	}
	return nil
}

// Download fetches any missing bundle files into modelDir.
func Download(modelDir string, bundles []Bundle) error {
	log := logging.Component("models")

	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	for _, b := range bundles {
		targetPath := filepath.Join(modelDir, b.Name)
		if _, err := os.Stat(targetPath); err == nil {
			log.Debugf("model %s already exists, skipping", b.Name)
			continue
		}

		log.Infof("downloading %s", b.Name)
		if err := downloadAndExtract(b.URL, targetPath); err != nil {
			return fmt.Errorf("failed to download %s: %w", b.Name, err)
		}
	}

	return nil
}

func downloadAndExtract(url, targetPath string) error {
	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(targetPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, bzip2.NewReader(resp.Body))
	return err
}
