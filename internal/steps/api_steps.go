package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/roshangit23/ReadyTestAPI/internal/coerce"
	"github.com/roshangit23/ReadyTestAPI/internal/inspect"
)

func (sc *scenario) registerAPISteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^I set the base URI to "([^"]*)"$`, sc.setBaseURI)
	ctx.Step(`^I set request headers:$`, sc.setHeaders)
	ctx.Step(`^I set basic authentication with username "([^"]*)" and password "([^"]*)"$`, sc.setBasicAuth)
	ctx.Step(`^I set bearer token from extracted value$`, sc.setBearerFromExtracted)
	ctx.Step(`^I set API key with header "([^"]*)" and value "([^"]*)"$`, sc.setAPIKey)
	ctx.Step(`^I set digest authentication with username "([^"]*)" and password "([^"]*)"$`, sc.setDigestAuth)
	ctx.Step(`^I set OAuth1 authentication with consumer key "([^"]*)", consumer secret "([^"]*)", access token "([^"]*)", and secret token "([^"]*)"$`, sc.setOAuth1)
	ctx.Step(`^I set request body:$`, sc.setBody)
	ctx.Step(`^I set request body with data:$`, sc.setBodyWithData)
	ctx.Step(`^I set complex request body with data:$`, sc.setComplexBody)
	ctx.Step(`^I set query parameters:$`, sc.setQueryParams)
	ctx.Step(`^I set path parameters:$`, sc.setPathParams)
	ctx.Step(`^I add multipart file "([^"]*)"$`, sc.addMultipartFile)
	ctx.Step(`^I set form parameters:$`, sc.setFormParams)
	ctx.Step(`^I add cookie "([^"]*)" with value "([^"]*)"$`, sc.addCookie)

	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)"$`, sc.send)

	ctx.Step(`^I expect the response status code to be (\d+)$`, sc.expectStatus)
	ctx.Step(`^I expect the response to contain field "([^"]*)" with value "([^"]*)"$`, sc.expectField)
	ctx.Step(`^I expect the response to contain "([^"]*)"$`, sc.expectContains)
	ctx.Step(`^I expect the response time to be less than (\d+) milliseconds$`, sc.expectResponseTime)
	ctx.Step(`^I expect the response header "([^"]*)" to be "([^"]*)"$`, sc.expectHeader)
	ctx.Step(`^I extract value from response using JSON path "([^"]*)"$`, sc.extractValue)
	ctx.Step(`^I extract values list from response using JSON path "([^"]*)"$`, sc.extractValues)
	ctx.Step(`^I validate the response against JSON schema "([^"]*)"$`, sc.validateSchema)
	ctx.Step(`^I extract XML from the response and store it$`, sc.extractXML)
}

// setBaseURI resolves name through the endpoint table.
func (sc *scenario) setBaseURI(name string) error {
	uri, err := sc.suite.APIPaths.Resolve(name)
	if err != nil {
		return err
	}
	sc.state.SetBaseURI(uri)
	return nil
}

func (sc *scenario) setHeaders(table *godog.Table) error {
	headers, err := pairMap(table)
	if err != nil {
		return err
	}
	sc.state.SetHeaders(headers)
	return nil
}

func (sc *scenario) setBasicAuth(username, password string) error {
	sc.state.SetBasicAuth(username, password)
	return nil
}

func (sc *scenario) setBearerFromExtracted() error {
	if sc.extracted == "" {
		return fmt.Errorf("no value has been extracted yet")
	}
	sc.state.SetBearerToken(sc.extracted)
	return nil
}

func (sc *scenario) setAPIKey(header, value string) error {
	sc.state.SetAPIKey(header, value)
	return nil
}

func (sc *scenario) setDigestAuth(username, password string) error {
	sc.state.SetDigestAuth(username, password)
	return nil
}

func (sc *scenario) setOAuth1(consumerKey, consumerSecret, accessToken, tokenSecret string) error {
	sc.state.SetOAuth1(consumerKey, consumerSecret, accessToken, tokenSecret)
	return nil
}

func (sc *scenario) setBody(doc *godog.DocString) error {
	sc.state.SetBody([]byte(doc.Content))
	return nil
}

// setBodyWithData sends every value as a JSON string.
func (sc *scenario) setBodyWithData(table *godog.Table) error {
	ps, err := pairs(table)
	if err != nil {
		return err
	}
	body, err := coerce.MapBody(ps)
	if err != nil {
		return err
	}
	sc.state.SetBody(body)
	return nil
}

// setComplexBody types each value: JSON, number, boolean or string.
func (sc *scenario) setComplexBody(table *godog.Table) error {
	ps, err := pairs(table)
	if err != nil {
		return err
	}
	body, err := coerce.BodyFromPairs(ps)
	if err != nil {
		return err
	}
	sc.state.SetBody(body)
	return nil
}

// setQueryParams keeps the table's row order in the query string.
func (sc *scenario) setQueryParams(table *godog.Table) error {
	ps, err := pairs(table)
	if err != nil {
		return err
	}
	for _, p := range ps {
		sc.state.SetQueryParam(p.Key, p.Value)
	}
	return nil
}

func (sc *scenario) setPathParams(table *godog.Table) error {
	m, err := pairMap(table)
	if err != nil {
		return err
	}
	sc.state.SetPathParams(m)
	return nil
}

func (sc *scenario) addMultipartFile(path string) error {
	sc.state.AddMultiPart(path)
	return nil
}

func (sc *scenario) setFormParams(table *godog.Table) error {
	m, err := pairMap(table)
	if err != nil {
		return err
	}
	sc.state.SetFormParams(m)
	return nil
}

func (sc *scenario) addCookie(name, value string) error {
	sc.state.AddCookie(name, value)
	return nil
}

func (sc *scenario) send(ctx context.Context, method, name string) error {
	resp, err := sc.state.Send(ctx, strings.ToUpper(method), name)
	if err != nil {
		return err
	}
	sc.response = resp
	return nil
}

func (sc *scenario) lastResponse() error {
	return expect(sc.response != nil, "no request has been sent yet")
}

func (sc *scenario) expectStatus(code int) error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	return expect(inspect.VerifyStatusCode(sc.response, code),
		"status code is not as expected: want %d, got %d", code, sc.response.StatusCode)
}

func (sc *scenario) expectField(path, expected string) error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	ok, err := inspect.VerifyField(sc.response, path, expected)
	if err != nil {
		return err
	}
	if !ok {
		actual, _ := inspect.ExtractValue(sc.response, path)
		return fmt.Errorf("response field %s is not as expected: want %q, got %q", path, expected, actual)
	}
	return nil
}

func (sc *scenario) expectContains(content string) error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	return expect(inspect.VerifyContains(sc.response, content), "response does not contain %q", content)
}

func (sc *scenario) expectResponseTime(maxMillis int64) error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	limit := time.Duration(maxMillis) * time.Millisecond
	return expect(inspect.VerifyResponseTime(sc.response, limit),
		"response time %dms is greater than %dms", sc.response.ResponseTime.Milliseconds(), maxMillis)
}

func (sc *scenario) expectHeader(header, expected string) error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	return expect(inspect.VerifyHeader(sc.response, header, expected),
		"response header %s is not as expected: want %q, got %q", header, expected, sc.response.GetHeader(header))
}

func (sc *scenario) extractValue(path string) error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	value, err := inspect.ExtractValue(sc.response, path)
	if err != nil {
		return err
	}
	sc.extracted = value
	return nil
}

func (sc *scenario) extractValues(path string) error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	values, err := inspect.ExtractValues(sc.response, path)
	if err != nil {
		return err
	}
	sc.values = values
	return nil
}

func (sc *scenario) validateSchema(name string) error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	if sc.suite.Schemas == nil {
		return fmt.Errorf("no schema directory configured")
	}
	return inspect.ValidateSchema(sc.response, sc.suite.Schemas, name)
}

func (sc *scenario) extractXML() error {
	if err := sc.lastResponse(); err != nil {
		return err
	}
	node, err := inspect.ExtractXML(sc.response)
	if err != nil {
		return err
	}
	sc.xml = node
	return nil
}
