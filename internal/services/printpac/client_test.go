package printpac

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"print-pricing/internal/catalog"
	"print-pricing/internal/enumerator"
)

func sealDescriptor() enumerator.OptionDescriptor {
	return enumerator.OptionDescriptor{
		Category:     catalog.Seal,
		SizeID:       "600",
		SizeLabel:    "正方形60mm×60mm",
		PaperGroupID: "8",
		PaperID:      "173",
		PaperName:    "透明PET",
		ProcessID:    "5",
		Lamination:   catalog.GlossyLaminatedPPWithWhitePlate,
	}
}

func TestFetchPricesSeal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seal/ajax/get_price.php" {
			t.Errorf("path: got=%s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		want := map[string]string{"category_id": "91", "size_id": "600", "paper_arr[]": "173", "kakou": "5", "tax_flag": "false"}
		for k, v := range want {
			if got := r.PostForm.Get(k); got != v {
				t.Errorf("form %s: want=%s got=%s", k, v, got)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tbody":{"body":{
			"1000":{"3":{"s_id":"124","price":"3,200","price2":null,"tax":320}},
			"100":{"5":{"s_id":124,"price":400,"price2":"","tax":40},"3":{"s_id":"123","price":"500","price2":"650","tax":50,"tax2":65}}
		}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	recs, err := c.FetchPrices(context.Background(), sealDescriptor())
	if err != nil {
		t.Fatalf("FetchPrices: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records: want=3 got=%d", len(recs))
	}

	first := recs[0]
	if first.Unit != 100 || first.Day != 3 {
		t.Fatalf("order: want=100/3 got=%d/%d", first.Unit, first.Day)
	}
	if first.SID != "123" || first.Price != Int(500) || first.Price2 != Int(650) {
		t.Fatalf("first: got=%+v", first)
	}
	if first.Descriptor != sealDescriptor() {
		t.Fatalf("descriptor not attached: got=%+v", first.Descriptor)
	}
	if recs[1].Day != 5 || recs[1].Price2.Valid || recs[1].SID != "124" {
		t.Fatalf("second: got=%+v", recs[1])
	}
	if recs[2].Unit != 1000 || recs[2].Price != Int(3200) {
		t.Fatalf("third: got=%+v", recs[2])
	}
}

func TestFetchPricesStickerUnwrapsCell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("kakou1") != "119" || r.PostForm.Get("kami_mei") != "404" || r.PostForm.Get("fix_size_h") != "200" {
			t.Errorf("form: got=%v", r.PostForm)
		}
		_, _ = w.Write([]byte(`{"tbody":{"body":{"10":{"4":{"1":{"s_id":"44246959","t_id":"797287","price":"1110","price2":"1420","tax":101,"tax2":129}}}}}}`))
	}))
	defer srv.Close()

	d := enumerator.OptionDescriptor{
		Category: catalog.Sticker, SizeID: "70", SizeLabel: "2500",
		PaperID: "4", ProcessID: "2", Lamination: catalog.MatteLaminated,
		ColorID: "1", CutAmountID: "2",
	}
	recs, err := NewClient(srv.URL, 5*time.Second).FetchPrices(context.Background(), d)
	if err != nil {
		t.Fatalf("FetchPrices: %v", err)
	}
	if len(recs) != 1 || recs[0].Price != Int(1110) || recs[0].Price2 != Int(1420) || recs[0].Unit != 10 || recs[0].Day != 4 {
		t.Fatalf("records: got=%+v", recs)
	}
}

func TestFetchPricesCombinationNotExist(t *testing.T) {
	bodies := []string{
		`{"status":"NG","message":"not available"}`,
		`{"error":"no data"}`,
		`{"tbody":{"body":[]}}`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := NewClient(srv.URL, 5*time.Second).FetchPrices(context.Background(), sealDescriptor())
		srv.Close()

		if !errors.Is(err, ErrCombinationNotExist) {
			t.Fatalf("body %s: want ErrCombinationNotExist got=%v", body, err)
		}
		var ferr *FetchError
		if !errors.As(err, &ferr) {
			t.Fatalf("body %s: want FetchError got=%T", body, err)
		}
	}
}

func TestFetchPricesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 5*time.Second).FetchPrices(context.Background(), sealDescriptor())
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("err: want FetchError got=%v", err)
	}
	if ferr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: want=503 got=%d", ferr.StatusCode)
	}
}

func TestFetchPricesUnknownRequestCode(t *testing.T) {
	d := sealDescriptor()
	d.ProcessID = "9"
	_, err := NewClient("http://127.0.0.1:1", time.Second).FetchPrices(context.Background(), d)
	var uerr *catalog.UnknownOptionError
	if !errors.As(err, &uerr) || uerr.Code != "9" {
		t.Fatalf("err: want UnknownOptionError(9) got=%v", err)
	}
}

func TestNullIntDecoding(t *testing.T) {
	cases := map[string]NullInt{
		`500`:     Int(500),
		`"500"`:   Int(500),
		`"1,420"`: Int(1420),
		`null`:    {},
		`"null"`:  {},
		`""`:      {},
		`"99.6"`:  Int(100),
	}
	for in, want := range cases {
		var got NullInt
		if err := json.Unmarshal([]byte(in), &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if got != want {
			t.Fatalf("Unmarshal(%s): want=%+v got=%+v", in, want, got)
		}
	}

	var bad NullInt
	if err := json.Unmarshal([]byte(`"abc"`), &bad); err == nil {
		t.Fatalf("Unmarshal(abc): expected error")
	}
}

const sealPage = `<html><body>
<div class="size" alt="正方形60mm×60mm"><input type="radio" name="size" value="600"></div>
<div class="size" alt="楕円形75mm×50mm"><input type="radio" name="size" value="628"></div>
<ul class="paper_group">
  <li><input type="radio" name="paper" value="2" data-name="ユポ"></li>
  <li><input type="radio" name="paper" value="8" data-name="透明PET"></li>
</ul>
</body></html>`

const stickerPage = `<html><body>
<input type="radio" name="print_color" value="1" data-name="CMYK印刷">
<input type="radio" name="print_color" value="2" data-name="RGB+α印刷">
<input type="radio" name="paper_material" value="1">
<input type="radio" name="paper_material" value="4">
<input type="radio" name="paper_halfcut" value="1">
<input type="radio" name="paper_halfcut" value="2">
<input type="radio" name="unrelated" value="9">
</body></html>`

func TestFetchOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/seal/size.php":
			_, _ = w.Write([]byte(sealPage))
		case "/sticker/":
			_, _ = w.Write([]byte(stickerPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, 5*time.Second)

	seal, err := c.FetchOptions(context.Background(), catalog.Seal)
	if err != nil {
		t.Fatalf("FetchOptions(seal): %v", err)
	}
	if len(seal.Sizes) != 2 || seal.Sizes[0] != (enumerator.Option{ID: "600", Name: "正方形60mm×60mm"}) {
		t.Fatalf("seal sizes: got=%+v", seal.Sizes)
	}
	if len(seal.PaperGroups) != 2 || seal.PaperGroups[1] != (enumerator.Option{ID: "8", Name: "透明PET"}) {
		t.Fatalf("seal paper groups: got=%+v", seal.PaperGroups)
	}

	sticker, err := c.FetchOptions(context.Background(), catalog.Sticker)
	if err != nil {
		t.Fatalf("FetchOptions(sticker): %v", err)
	}
	if len(sticker.Colors) != 2 || len(sticker.Papers) != 2 || len(sticker.CutAmounts) != 2 {
		t.Fatalf("sticker options: got=%+v", sticker)
	}
	if sticker.Colors[1].Name != "RGB+α印刷" || sticker.Papers[0].Name != "1" {
		t.Fatalf("sticker names: got=%+v", sticker)
	}

	if _, err := c.FetchOptions(context.Background(), catalog.MultiSticker); err == nil {
		t.Fatalf("FetchOptions(multi): expected error for missing page")
	}
}
