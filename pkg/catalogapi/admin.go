package catalogapi

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	pkgerrors "github.com/electrohogar/storefront-backend/pkg/errors"
)

// FilePart is one uploaded file to forward in a multipart request.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// AdminForm is a catalog mutation payload: scalar and repeated text fields
// plus image uploads, forwarded upstream as multipart form data.
type AdminForm struct {
	Fields url.Values
	Files  []FilePart
}

func (f AdminForm) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for field, values := range f.Fields {
		for _, value := range values {
			if err := writer.WriteField(field, value); err != nil {
				return nil, "", err
			}
		}
	}
	for _, file := range f.Files {
		part, err := writer.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

func (c *Client) sendMultipart(ctx context.Context, method, endpoint, path, bearer string, form AdminForm, dest any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+endpoint+" form")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, nil), body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+endpoint+" request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+bearer)
	return c.do(req, endpoint, dest)
}

// AdminCreate creates a catalog entry in the given family.
func (c *Client) AdminCreate(ctx context.Context, bearer string, family Family, form AdminForm) (*Product, error) {
	var product Product
	if err := c.sendMultipart(ctx, http.MethodPost, "admin_create", string(family), bearer, form, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// AdminUpdate updates a catalog entry by id.
func (c *Client) AdminUpdate(ctx context.Context, bearer string, family Family, id string, form AdminForm) (*Product, error) {
	var product Product
	path := string(family) + "/" + url.PathEscape(id)
	if err := c.sendMultipart(ctx, http.MethodPut, "admin_update", path, bearer, form, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// AdminDelete removes a catalog entry by id; ErrNotFound on unknown ids.
func (c *Client) AdminDelete(ctx context.Context, bearer string, family Family, id string) error {
	path := string(family) + "/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.buildURL(path, nil), nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build admin_delete request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	return c.do(req, "admin_delete", nil)
}
