package imageproc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"

	"github.com/desain-gratis/imageadjust/types/entity"
)

// Form names of the upload payload
const (
	PartDocument    = "document"
	PartOriginal    = "originalImage"
	PartCropped     = "croppedImage"
	PartCircle      = "circleImage"
	PartCropDetails = "cropDetails"
	PartScale       = "scale"
	PartRotate      = "rotate"
)

type UploadArtifacts struct {
	Original     []byte
	OriginalName string                 // defaults to original.<ext>
	Cropped      *entity.ExportArtifact // nil when there is no valid crop
	Circle       *entity.ExportArtifact // avatar cut-out, optional
}

// Payload is a ready to send multipart/form-data request body.
type Payload struct {
	ContentType string
	Body        []byte
	Parts       []string // form names, in order
}

// ToUploadPayload assembles the save request. It does not send anything.
func ToUploadPayload(artifacts UploadArtifacts, metadata entity.ExportMetadata) (*Payload, error) {
	body := bytes.NewBuffer(make([]byte, 0, len(artifacts.Original)+1024))
	mwriter := multipart.NewWriter(body)

	result := &Payload{
		ContentType: mwriter.FormDataContentType(),
	}

	// document metadata
	doc, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal metadata `%v`", err, PartDocument)
	}
	if err := writeField(mwriter, PartDocument, doc); err != nil {
		return nil, err
	}
	result.Parts = append(result.Parts, PartDocument)

	if artifacts.Cropped != nil {
		name := "cropped" + artifacts.Cropped.Format.Extension()
		if err := writeFile(mwriter, PartCropped, name, artifacts.Cropped.Data); err != nil {
			return nil, err
		}
		result.Parts = append(result.Parts, PartCropped)
	}

	if artifacts.Circle != nil {
		name := "circle" + artifacts.Circle.Format.Extension()
		if err := writeFile(mwriter, PartCircle, name, artifacts.Circle.Data); err != nil {
			return nil, err
		}
		result.Parts = append(result.Parts, PartCircle)
	}

	if len(artifacts.Original) > 0 {
		name := artifacts.OriginalName
		if name == "" {
			name = "original" + extensionOf(http.DetectContentType(artifacts.Original))
		}
		if err := writeFile(mwriter, PartOriginal, name, artifacts.Original); err != nil {
			return nil, err
		}
		result.Parts = append(result.Parts, PartOriginal)
	}

	var details any
	if metadata.Region != nil {
		details = metadata.Region
	}
	cropDetails, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal `%v`", err, PartCropDetails)
	}
	fields := []struct {
		name  string
		value []byte
	}{
		{PartCropDetails, cropDetails},
		{PartScale, []byte(strconv.FormatFloat(metadata.Transform.Scale, 'f', -1, 64))},
		{PartRotate, []byte(strconv.FormatFloat(entity.NormalizeRotation(metadata.Transform.Rotation), 'f', -1, 64))},
	}
	for _, f := range fields {
		if err := writeField(mwriter, f.name, f.value); err != nil {
			return nil, err
		}
		result.Parts = append(result.Parts, f.name)
	}

	if err := mwriter.Close(); err != nil {
		return nil, fmt.Errorf("%w: close multipart writer", err)
	}
	result.Body = body.Bytes()

	return result, nil
}

func writeField(mwriter *multipart.Writer, name string, value []byte) error {
	w, err := mwriter.CreateFormField(name)
	if err != nil {
		return fmt.Errorf("%w: CreateFormField `%v`", err, name)
	}
	if _, err := w.Write(value); err != nil {
		return fmt.Errorf("%w: write `%v`", err, name)
	}
	return nil
}

func writeFile(mwriter *multipart.Writer, name, filename string, data []byte) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", http.DetectContentType(data))
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, filename))

	w, err := mwriter.CreatePart(h)
	if err != nil {
		return fmt.Errorf("%w: CreatePart `%v`", err, name)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write `%v`", err, name)
	}
	return nil
}

func extensionOf(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".bin"
}
