package homeassistant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/echocat/slf4g"

	"github.com/blaubaer/talk-assistant/pkg/common"
	"github.com/blaubaer/talk-assistant/pkg/signal"
)

const DefaultServer = "http://homeassistant.local:8123/"

type Homeassistant struct {
	conf         *Configuration
	saveConfFunc func() error
	mutex        sync.RWMutex

	lastState atomic.Pointer[state]

	client http.Client

	requestCredentials func(server, token *string) error
}

func (this *Homeassistant) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc

	return this.Update()
}

func (this *Homeassistant) Update() error {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	rsp, err := this.do(http.MethodGet, "/api/", nil)
	if err != nil {
		return err
	}
	_ = rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d - %s", rsp.StatusCode, rsp.Status)
	}

	return nil
}

func (this *Homeassistant) Ensure(ctx signal.Context) error {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	target := state{
		state:     ctx.State(),
		since:     ctx.Since(),
		timestamp: time.Now(),
	}

	logger := log.With("entityId", this.conf.EntityId)

	if v := this.lastState.Load(); v != nil {
		if v.timestamp.Add(this.conf.DeadZoneInterval).After(time.Now()) {
			if v.isEqualTo(&target) {
				logger.Debug("Entity is already in requested state (while dead zone timeout). No update needed.")
				return nil
			}
		}
	}

	rsp, err := this.do(http.MethodGet, "/api/states/"+this.conf.EntityId, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = rsp.Body.Close()
	}()

	current := state{
		timestamp: time.Now(),
	}
	attributes := make(map[string]any)
	forceUpdate := false

	switch rsp.StatusCode {
	case http.StatusOK:
		b, err := io.ReadAll(rsp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		var gRsp stateGetResponse
		if err := sonic.Unmarshal(b, &gRsp); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}

		current.state = gRsp.State
		current.since = gRsp.getAttrSince()
		if v := gRsp.Attributes; v != nil {
			attributes = v
		}

	case http.StatusNotFound:
		logger.Info("Entity not found. It will be created now...")
		forceUpdate = true
		attributes["icon"] = "mdi:microphone-message"
		attributes["friendly_name"] = strings.TrimPrefix(this.conf.EntityId, "input_boolean.")

	default:
		return fmt.Errorf("unexpected status code: %d - %s", rsp.StatusCode, rsp.Status)
	}

	if !forceUpdate && target.isEqualTo(&current) {
		logger.Debug("Entity is already in requested state. No update needed.")
		this.lastState.Store(&current)
		return nil
	}

	attributes["editable"] = false
	sReq := statePostRequest{
		State:      target.state,
		Attributes: attributes,
	}
	sReq.setAttrSince(target.since)

	sReqB, err := sonic.Marshal(sReq)
	if err != nil {
		return err
	}

	sRsp, err := this.do(http.MethodPost, "/api/states/"+this.conf.EntityId, sReqB)
	if err != nil {
		return err
	}
	_ = sRsp.Body.Close()
	if sRsp.StatusCode != http.StatusOK && sRsp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code: %d - %s", sRsp.StatusCode, sRsp.Status)
	}

	logger.With("state", target.state).
		Debug("Entity updated.")
	this.lastState.Store(&target)

	return nil
}

type resolveCredentialsReason uint

const (
	resolveCredentialsReasonDefault resolveCredentialsReason = iota
	resolveCredentialsReasonInvalidToken
)

func (this *Homeassistant) resolveCredentials(reason resolveCredentialsReason) (server, token string, _ error) {
	server, token = this.conf.Server, this.conf.Token
	if reason == resolveCredentialsReasonDefault && server != "" && token != "" {
		return server, token, nil
	}

	switch reason {
	case resolveCredentialsReasonInvalidToken:
		log.With("server", server).
			Error("Home Assistant rejected the long live token.")
	default:
		log.Info("Server URL and long live token required to access Home Assistant.")
	}

	for {
		server, token = "", ""
		if err := this.requestCredentialsFromUser(&server, &token); err != nil {
			return "", "", err
		}
		if server == "" {
			server = DefaultServer
		}

		serverOk, tokenOk, err := this.check(server, token)
		if err != nil {
			return "", "", err
		}
		if serverOk && tokenOk {
			this.conf.Server, this.conf.Token = server, token
			if err := this.saveConfFunc(); err != nil {
				return "", "", fmt.Errorf("cannot store credentials: %w", err)
			}
			return server, token, nil
		}

		if !serverOk {
			log.With("server", server).
				Error("Provided Home Assistant's server URL is invalid.")
		} else {
			log.With("server", server).
				Error("Provided Home Assistant's long live token is invalid.")
		}
	}
}

func (this *Homeassistant) requestCredentialsFromUser(server, token *string) error {
	if f := this.requestCredentials; f != nil {
		return f(server, token)
	}
	if err := common.RequestStringContentIfRequiredFromTerminal(server, fmt.Sprintf("Home Assistant server URL (empty = %s)", DefaultServer), true, false); err != nil {
		return fmt.Errorf("cannot request server url: %w", err)
	}
	if err := common.RequestStringContentIfRequiredFromTerminal(token, "Home Assistant token", false, true); err != nil {
		return fmt.Errorf("cannot request token: %w", err)
	}
	return nil
}

func (this *Homeassistant) check(server, token string) (serverOk, tokenOk bool, err error) {
	ctx, cancelFunc := context.WithTimeout(context.Background(), this.timeout())
	defer cancelFunc()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(server, "/")+"/api/", nil)
	if err != nil {
		return false, false, err
	}
	req.Header.Add("Authorization", "Bearer "+token)
	rsp, err := this.client.Do(req)
	if err != nil {
		return false, false, nil
	}
	_ = rsp.Body.Close()
	switch rsp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true, false, nil
	case http.StatusOK:
		return true, true, nil
	default:
		return false, false, nil
	}
}

func (this *Homeassistant) do(method, path string, body []byte) (*http.Response, error) {
	server, token, err := this.resolveCredentials(resolveCredentialsReasonDefault)
	if err != nil {
		return nil, err
	}

	do := func() (*http.Response, error) {
		ctx, cancelFunc := context.WithTimeout(context.Background(), this.timeout())

		var br io.Reader
		if body != nil {
			br = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(server, "/")+path, br)
		if err != nil {
			cancelFunc()
			return nil, err
		}
		req.Header.Add("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		rsp, err := this.client.Do(req)
		if err != nil {
			cancelFunc()
			return nil, fmt.Errorf("failed to access %v: %w", req.URL, err)
		}
		rsp.Body = &cancelOnClose{rsp.Body, cancelFunc}
		return rsp, nil
	}

	for {
		rsp, err := do()
		if err != nil {
			return nil, err
		}

		switch rsp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			_ = rsp.Body.Close()
			if server, token, err = this.resolveCredentials(resolveCredentialsReasonInvalidToken); err != nil {
				return nil, err
			}
		default:
			return rsp, nil
		}
	}
}

func (this *Homeassistant) timeout() time.Duration {
	if this.conf != nil && this.conf.Timeout > 0 {
		return this.conf.Timeout
	}
	return time.Second * 60
}

func (this *Homeassistant) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	this.conf = nil
	this.saveConfFunc = nil
	return nil
}

func (this *Homeassistant) GetType() signal.Type {
	return signal.TypeHomeAssistant
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (this *cancelOnClose) Close() error {
	defer this.cancel()
	return this.ReadCloser.Close()
}
