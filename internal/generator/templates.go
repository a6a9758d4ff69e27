package generator

import (
	"bytes"
	"embed"
	"strings"
	"sync"
	"text/template"

	"github.com/calumari/neatgen/internal/errors"
)

const (
	tmplBody      = "body"
	tmplType      = "type"
	tmplFragments = "fragments"
	tmplFragment  = "fragment"
)

// fragmentKinds lists every fragment kind the IR produces. Each one is
// rendered by its own fragment_<kind> template.
var fragmentKinds = []string{fragmentKindField, fragmentKindMethod, fragmentKindBase}

const (
	templatePattern  = "templates/*.gtpl"
	documentTemplate = "templates/document.cpp.in"
)

// Document template placeholders.
const (
	placeholderModule    = "{module_name}"
	placeholderBody      = "{registration_body}"
	placeholderNamespace = "{runtime_namespace}"
)

//go:embed templates/*.gtpl templates/document.cpp.in
var templatesFS embed.FS

// registrationTemplates parses the embedded registration templates on
// first use.
var registrationTemplates = sync.OnceValues(func() (*template.Template, error) {
	t, err := template.New(tmplBody).ParseFS(templatesFS, templatePattern)
	if err != nil {
		return nil, errors.Wrap(err, "parse registration templates")
	}
	if err := checkRegistrationTemplates(t); err != nil {
		return nil, err
	}
	return t, nil
})

// checkRegistrationTemplates fails when set lacks a template the body
// rendering dispatches to.
func checkRegistrationTemplates(set *template.Template) error {
	names := []string{tmplBody, tmplType, tmplFragments, tmplFragment}
	for _, kind := range fragmentKinds {
		names = append(names, "fragment_"+kind)
	}
	var missing []string
	for _, name := range names {
		if set.Lookup(name) == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return errors.AssertionFailedf("registration templates lack %s", strings.Join(missing, ", "))
	}
	return nil
}

// DefaultDocumentTemplate returns the built-in document template.
func DefaultDocumentTemplate() string {
	data, err := templatesFS.ReadFile(documentTemplate)
	if err != nil {
		panic(err) // embedded at build time
	}
	return string(data)
}

func renderBody(model bodyModel) (string, error) {
	set, err := registrationTemplates()
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := set.ExecuteTemplate(&out, tmplBody, model); err != nil {
		return "", errors.Wrap(err, "execute body template")
	}
	return strings.TrimSuffix(out.String(), "\n"), nil
}

// assembleDocument substitutes the placeholders of a document template in a
// single pass, so placeholder text inside the body is left alone.
func assembleDocument(tmpl, module, body, namespace string) (string, error) {
	if !strings.Contains(tmpl, placeholderBody) {
		return "", errors.WithHint(
			errors.Newf("document template has no %s placeholder", placeholderBody),
			"the registration statements would be dropped; add the placeholder inside a function body")
	}
	r := strings.NewReplacer(
		placeholderModule, module,
		placeholderBody, body,
		placeholderNamespace, namespace,
	)
	return r.Replace(tmpl), nil
}

// ValidateDocumentTemplate reports whether tmpl can be used as a document
// template.
func ValidateDocumentTemplate(tmpl string) error {
	_, err := assembleDocument(tmpl, "", "", "")
	return err
}
