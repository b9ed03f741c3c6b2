package browser

import "fmt"

// resolveJS defines el, or returns {stale: true} when the keyed node is gone.
const resolveJS = `var el = document.querySelector('[%s="' + %s + '"]');
if (!el) { return {stale: true}; }
`

func resolve(key string) string {
	return fmt.Sprintf(resolveJS, keyAttr, jsString(key))
}

func wrap(body string) string {
	return "(function() {\n" + body + "\n})()"
}

// queryScript tags every match of selector below the scoped node, or the
// document when scope is empty, and returns their keys in document order.
// Keys carry a per document prefix so that handles from a previous page
// never resolve on the next one.
func queryScript(scope, selector string) string {
	body := "var root = document;\n"
	if scope != "" {
		body += resolve(scope) + "root = el;\n"
	}
	body += fmt.Sprintf(`if (!window.__goapplyDoc) { window.__goapplyDoc = Math.random().toString(36).slice(2, 10); window.__goapplySeq = 0; }
var found;
try { found = root.querySelectorAll(%s); } catch (e) { return {error: String(e.message || e)}; }
var keys = [];
for (var i = 0; i < found.length; i++) {
  var n = found[i];
  var k = n.getAttribute('%s');
  if (!k || k.indexOf(window.__goapplyDoc + '-') !== 0) {
    window.__goapplySeq++;
    k = window.__goapplyDoc + '-' + window.__goapplySeq;
    n.setAttribute('%s', k);
  }
  keys.push(k);
}
return {keys: keys};`, jsString(selector), keyAttr, keyAttr)
	return wrap(body)
}

// infoScript snapshots the element in the shape of dom.ElementInfo.
func infoScript(key string) string {
	return wrap(resolve(key) + `var tag = el.tagName.toLowerCase();
var attrs = {};
for (var i = 0; i < el.attributes.length; i++) { attrs[el.attributes[i].name.toLowerCase()] = el.attributes[i].value; }
var style = window.getComputedStyle(el);
var visible = style.display !== 'none' && style.visibility !== 'hidden' && el.getClientRects().length > 0;
var info = {
  tag: tag,
  attrs: attrs,
  text: el.innerText || el.textContent || '',
  value: '',
  visible: visible,
  disabled: !!el.disabled || el.hasAttribute('disabled'),
  checked: !!el.checked,
  options: [],
  labelText: '',
  forLabelText: '',
  formText: ''
};
if (tag === 'input' || tag === 'textarea' || tag === 'select') { info.value = el.value || ''; }
if (tag === 'select') {
  for (var j = 0; j < el.options.length; j++) {
    var o = el.options[j];
    info.options.push({value: o.value, text: o.text, selected: o.selected});
  }
}
var label = el.closest('label');
if (label) { info.labelText = label.innerText || label.textContent || ''; }
if (el.id) {
  var forLabel = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
  if (forLabel) { info.forLabelText = forLabel.innerText || forLabel.textContent || ''; }
}
var form = el.closest('form');
if (form) { info.formText = form.innerText || form.textContent || ''; }
return info;`)
}

// setValueScript assigns through the native value setter so that framework
// controlled inputs see the change, then fires the events a user would.
func setValueScript(key, value string) string {
	return wrap(resolve(key) + fmt.Sprintf(`if (el.disabled) { return {error: 'element is disabled'}; }
var proto = el.tagName === 'TEXTAREA' ? HTMLTextAreaElement.prototype : HTMLInputElement.prototype;
var desc = Object.getOwnPropertyDescriptor(proto, 'value');
if (!desc || !(el instanceof HTMLInputElement || el instanceof HTMLTextAreaElement)) {
  return {error: 'cannot set value of ' + el.tagName.toLowerCase()};
}
el.focus();
desc.set.call(el, %s);
el.dispatchEvent(new Event('input', {bubbles: true}));
el.dispatchEvent(new Event('change', {bubbles: true}));
el.dispatchEvent(new Event('blur', {bubbles: true}));
return {};`, jsString(value)))
}

func selectScript(key, value string) string {
	return wrap(resolve(key) + fmt.Sprintf(`if (!(el instanceof HTMLSelectElement)) { return {error: 'not a select element'}; }
var want = %s;
var idx = -1;
for (var i = 0; i < el.options.length; i++) { if (el.options[i].value === want) { idx = i; break; } }
if (idx < 0) { return {error: 'no option with value ' + JSON.stringify(want)}; }
el.selectedIndex = idx;
el.dispatchEvent(new Event('input', {bubbles: true}));
el.dispatchEvent(new Event('change', {bubbles: true}));
return {};`, jsString(value)))
}

func scrollScript(key string) string {
	return wrap(resolve(key) + `el.scrollIntoView({block: 'center', inline: 'nearest'});
return {};`)
}

func domClickScript(key string) string {
	return wrap(resolve(key) + `el.click();
return {};`)
}
