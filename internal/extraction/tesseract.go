//go:build cgo && !notesseract

package extraction

import "github.com/otiai10/gosseract/v2"

const ocrAvailable = true

var errOCRUnavailable error

func recognise(languages []string, img ocrImage) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(languages...); err != nil {
		return "", err
	}

	var err error
	if img.path != "" {
		err = client.SetImage(img.path)
	} else {
		err = client.SetImageFromBytes(img.data)
	}
	if err != nil {
		return "", err
	}
	return client.Text()
}
